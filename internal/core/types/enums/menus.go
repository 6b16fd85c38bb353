package enums

// MenuAction - пункт главного меню.
type MenuAction uint8

const (
	MenuNone MenuAction = iota
	MenuNewGame
	MenuLoadGame
	MenuOptions
	MenuExit
	MenuIntro
	MenuCredits
)

var menuActions = newRegistry(map[MenuAction]string{
	MenuNewGame:  "new_game",
	MenuLoadGame: "load_game",
	MenuOptions:  "options",
	MenuExit:     "exit",
	MenuIntro:    "intro",
	MenuCredits:  "credits",
})

func (a MenuAction) String() string {
	if n, ok := menuActions.name(a); ok {
		return n
	}
	return "none"
}

func ParseMenuAction(s string) (MenuAction, bool) { return menuActions.parse(s) }

// MenuActionNames - для available_actions главного меню.
func MenuActionNames() []string { return menuActions.names() }

// Пункты главного меню, которые выполняются нажатием клавиши.
var menuKeys = map[MenuAction]Key{
	MenuIntro:   KeyA + Key('i'-'a'),
	MenuCredits: KeyA + Key('c'-'a'),
}

// KeyFor возвращает клавишу пункта, если пункт выполняется нажатием.
func (a MenuAction) KeyFor() (Key, bool) {
	k, ok := menuKeys[a]
	return k, ok
}

// SelectorOption - действие экрана выбора персонажа.
type SelectorOption uint8

const (
	SelectorCreateCustom SelectorOption = iota
	SelectorTakePremade
	SelectorModifyPremade
	SelectorNext
	SelectorPrevious
	SelectorBack
)

var selectorOptions = newRegistry(map[SelectorOption]string{
	SelectorCreateCustom:  "create_custom",
	SelectorTakePremade:   "take_premade",
	SelectorModifyPremade: "modify_premade",
	SelectorNext:          "next",
	SelectorPrevious:      "previous",
	SelectorBack:          "back",
})

var selectorKeys = map[SelectorOption]Key{
	SelectorCreateCustom:  KeyA + Key('c'-'a'),
	SelectorTakePremade:   KeyA + Key('t'-'a'),
	SelectorModifyPremade: KeyA + Key('m'-'a'),
	SelectorNext:          KeyRight,
	SelectorPrevious:      KeyLeft,
	SelectorBack:          KeyA + Key('b'-'a'),
}

func (o SelectorOption) String() string {
	if n, ok := selectorOptions.name(o); ok {
		return n
	}
	return "unknown"
}

// Key - клавиша, которой выполняется действие на экране выбора.
func (o SelectorOption) Key() Key { return selectorKeys[o] }

func ParseSelectorOption(s string) (SelectorOption, bool) { return selectorOptions.parse(s) }

func SelectorOptionNames() []string { return selectorOptions.names() }
