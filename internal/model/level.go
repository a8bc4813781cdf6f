package model

// PlayerLevel is the academy's skill ladder. Levels are matched by equality
// only: the data model defines no ordering between them, so "same or below"
// relaxations are not allowed anywhere.
type PlayerLevel string

const (
	LevelIniciacion  PlayerLevel = "iniciacion"
	LevelBasico      PlayerLevel = "basico"
	LevelIntermedio  PlayerLevel = "intermedio"
	LevelAvanzado    PlayerLevel = "avanzado"
	LevelCompeticion PlayerLevel = "competicion"
)

var allLevels = []PlayerLevel{
	LevelIniciacion,
	LevelBasico,
	LevelIntermedio,
	LevelAvanzado,
	LevelCompeticion,
}

var levelLabels = map[PlayerLevel]string{
	LevelIniciacion:  "Iniciación",
	LevelBasico:      "Básico",
	LevelIntermedio:  "Intermedio",
	LevelAvanzado:    "Avanzado",
	LevelCompeticion: "Competición",
}

// AllLevels returns the registry of levels in display order.
func AllLevels() []PlayerLevel {
	out := make([]PlayerLevel, len(allLevels))
	copy(out, allLevels)
	return out
}

// IsValid reports whether l is a known level.
func (l PlayerLevel) IsValid() bool {
	_, ok := levelLabels[l]
	return ok
}

// Label returns the Spanish display name for the level.
func (l PlayerLevel) Label() string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return string(l)
}
