package enums

import "fmt"

// Key - сканкод клавиши (коды SDL).
type Key int

const (
	KeyA Key = 4
	KeyZ Key = 29

	Key1 Key = 30
	Key9 Key = 38
	Key0 Key = 39

	KeyReturn    Key = 40
	KeyEscape    Key = 41
	KeyBackspace Key = 42
	KeyTab       Key = 43
	KeySpace     Key = 44

	KeyF1  Key = 58
	KeyF12 Key = 69

	KeyRight Key = 79
	KeyLeft  Key = 80
	KeyDown  Key = 81
	KeyUp    Key = 82

	KeyLCtrl  Key = 224
	KeyLShift Key = 225
	KeyLAlt   Key = 226
	KeyRCtrl  Key = 228
	KeyRShift Key = 229
	KeyRAlt   Key = 230
)

var keys = newKeyRegistry()

func newKeyRegistry() registry[Key] {
	m := map[Key]string{
		KeyReturn:    "return",
		KeyEscape:    "escape",
		KeyBackspace: "backspace",
		KeyTab:       "tab",
		KeySpace:     "space",
		KeyRight:     "right",
		KeyLeft:      "left",
		KeyDown:      "down",
		KeyUp:        "up",
		KeyLCtrl:     "lctrl",
		KeyLShift:    "lshift",
		KeyLAlt:      "lalt",
		KeyRCtrl:     "rctrl",
		KeyRShift:    "rshift",
		KeyRAlt:      "ralt",
		Key0:         "0",
	}
	for k := KeyA; k <= KeyZ; k++ {
		m[k] = string(rune('a' + int(k-KeyA)))
	}
	for k := Key1; k <= Key9; k++ {
		m[k] = string(rune('1' + int(k-Key1)))
	}
	for k := KeyF1; k <= KeyF12; k++ {
		m[k] = fmt.Sprintf("f%d", int(k-KeyF1)+1)
	}
	return newRegistry(m).alias("enter", KeyReturn)
}

func (k Key) String() string {
	if n, ok := keys.name(k); ok {
		return n
	}
	return fmt.Sprintf("key(%d)", int(k))
}

// ParseKey разбирает имя клавиши ("a", "f5", "escape", "enter").
func ParseKey(s string) (Key, bool) { return keys.parse(s) }

// KeyForChar возвращает клавишу для буквы или цифры.
func KeyForChar(c rune) (Key, bool) {
	return keys.parse(string(c))
}
