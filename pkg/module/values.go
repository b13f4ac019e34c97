package module

// Values хранит конфигурацию модуля; реализует Set и Get контракта.
type Values struct {
	m map[string]string
}

// NewValues создает хранилище с копией значений по умолчанию.
func NewValues(defaults map[string]string) *Values {
	m := make(map[string]string, len(defaults))
	for k, v := range defaults {
		m[k] = v
	}
	return &Values{m: m}
}

// Set записывает значение, перезаписывая предыдущее.
func (v *Values) Set(key, value string) {
	if v.m == nil {
		v.m = make(map[string]string)
	}
	v.m[key] = value
}

// Get возвращает значение по ключу.
func (v *Values) Get(key string) (string, bool) {
	val, ok := v.m[key]
	return val, ok
}

// Display возвращает значение или Null, если ключ не задан.
func Display(m interface{ Get(string) (string, bool) }, key string) string {
	if val, ok := m.Get(key); ok {
		return val
	}
	return Null
}
