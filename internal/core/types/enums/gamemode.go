package enums

// GameMode - битовая маска режимов симуляции.
type GameMode uint32

const (
	ModeWorldmap GameMode = 1 << iota
	ModeDialog
	ModeOptions
	ModeSaveGame
	ModeLoadGame
	ModeCombat
	ModePreferences
	ModeHelp
	ModeEditor
	ModePipboy
	ModePlayerTurn
	ModeInventory
	ModeAutomap
	ModeSkilldex
	ModeLoot
	ModeBarter
)

// Порядок декодирования фиксирован: агенты сравнивают списки как есть.
var modeOrder = []struct {
	bit  GameMode
	name string
}{
	{ModeWorldmap, "worldmap"},
	{ModeDialog, "dialog"},
	{ModeOptions, "options"},
	{ModeSaveGame, "save_game"},
	{ModeLoadGame, "load_game"},
	{ModeCombat, "combat"},
	{ModePreferences, "preferences"},
	{ModeHelp, "help"},
	{ModeEditor, "editor"},
	{ModePipboy, "pipboy"},
	{ModePlayerTurn, "player_turn"},
	{ModeInventory, "inventory"},
	{ModeAutomap, "automap"},
	{ModeSkilldex, "skilldex"},
	{ModeLoot, "loot"},
	{ModeBarter, "barter"},
}

// Has проверяет, установлен ли хотя бы один из битов.
func (m GameMode) Has(bits GameMode) bool {
	return m&bits != 0
}

// Decode возвращает имена установленных флагов. Для нулевой маски - пустой
// список, не nil, чтобы в JSON было [].
func (m GameMode) Decode() []string {
	out := make([]string, 0, 4)
	for _, f := range modeOrder {
		if m&f.bit != 0 {
			out = append(out, f.name)
		}
	}
	return out
}
