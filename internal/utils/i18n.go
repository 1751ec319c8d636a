package utils

// Server-side message table for boundary responses. Domain strings that are
// part of the wire contract are emitted verbatim by the handlers and do not
// go through here.
var messages = map[string]map[string]string{
	"auth_required": {
		"ru": "Требуется вход в систему",
		"en": "authentication required",
	},
	"access_denied": {
		"ru": "Доступ запрещён",
		"en": "access denied",
	},
	"license_required": {
		"ru": "Требуется действующая лицензия",
		"en": "license required",
	},
	"internal_error": {
		"ru": "Внутренняя ошибка сервера",
		"en": "internal error",
	},
}

// T translates a message key for the given locale, falling back to Russian
// and then to the key itself.
func T(locale, key string) string {
	m, ok := messages[key]
	if !ok {
		return key
	}
	if v, ok := m[locale]; ok {
		return v
	}
	return m["ru"]
}
