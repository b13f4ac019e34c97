// Package module описывает контракт модуля эксплойта и ABI точки входа.
//
// Модуль собирается как Go plugin (go build -buildmode=plugin) и экспортирует
// функцию с именем EntrySymbol и сигнатурой Factory:
//
//	func GetPlugin() module.Module
//
// Хост и модуль должны быть собраны одним toolchain и одной версией этого
// пакета. Рантайм Go отказывает в plugin.Open, если версии пакетов
// расходятся; других проверок совместимости нет.
package module

import "context"

// EntrySymbol имя экспортируемой фабрики модуля.
const EntrySymbol = "GetPlugin"

// Null отображается вместо значения незаданной опции.
const Null = "null"

// Option описывает настраиваемый параметр модуля.
type Option struct {
	Key         string
	Description string
	Optional    bool
}

// Module определяет контракт для подгружаемых модулей.
type Module interface {
	// Describe возвращает статичное описание модуля.
	Describe() string
	// Execute выполняет действие модуля; ошибка содержит причину отказа.
	Execute(ctx context.Context) error
	// Options перечисляет параметры в порядке объявления.
	Options() []Option
	// Set сохраняет значение по любому ключу.
	Set(key, value string)
	// Get возвращает значение и признак его наличия.
	Get(key string) (string, bool)
}

// Factory сигнатура символа EntrySymbol.
type Factory func() Module
