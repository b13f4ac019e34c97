package shell

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const banner = `
    ___    __      ___                           ______                                             __
   /   |  / /     /   | ____ __________ _       / ____/________ _____ ___  ___ _      ______  _____/ /__
  / /| | / /_____/ /| |/ __ ` + "`" + `/ ___/ __ ` + "`" + `/      / /_  / ___/ __ ` + "`" + `/ __ ` + "`" + `__ \/ _ \ | /| / / __ \/ ___/ //_/
 / ___ |/ /_____/ ___ / /_/ (__  ) /_/ /      / __/ / /  / /_/ / / / / / /  __/ |/ |/ / /_/ / /  / ,<
/_/  |_/_/     /_/  |_\__, /____/\__,_/      /_/   /_/   \__,_/_/ /_/ /_/\___/|__/|__/\____/_/  /_/|_|
                        /_/
`

// PrintBanner печатает баннер и, если есть, строку об узле.
func PrintBanner(out io.Writer, hostLine string) {
	fmt.Fprint(out, color.New(color.FgGreen, color.Bold).Sprint(banner))
	fmt.Fprintf(out, "  %s\n", color.New(color.FgBlue, color.Underline).Sprint("CyberSecurity toolkit"))
	if hostLine != "" {
		fmt.Fprintf(out, "  %s %s\n", marker.Sprint("*"), hostLine)
	}
	fmt.Fprintln(out)
}

// Prompt строит приглашение вида user(name)>.
func Prompt(user, name string) string {
	paren := color.New(color.FgMagenta, color.Bold)
	accent := color.New(color.FgBlue, color.Bold)
	return fmt.Sprintf("%s%s%s%s%s ",
		accent.Sprint(user),
		paren.Sprint("("),
		color.New(color.FgRed, color.Bold, color.Underline).Sprint(name),
		paren.Sprint(")"),
		accent.Sprint(">"),
	)
}
