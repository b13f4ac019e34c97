package shell

import (
	"alaqsa/internal/storage"
)

// buildAuditPayload не пишет значения опций: в них бывают пароли.
func buildAuditPayload(cmd Command) ([]byte, error) {
	args := map[string]string{}
	switch cmd.Kind {
	case KindLoad:
		args["path"] = cmd.Path
	case KindSetOption:
		args["key"] = cmd.Key
	}
	return storage.MarshalPayload(map[string]interface{}{
		"command": cmd.Kind.String(),
		"args":    args,
	})
}
