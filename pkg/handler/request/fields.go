package request

// MethType is the methylation context being plotted.
type MethType int

const (
	MethTypeMCH MethType = iota
	MethTypeMCG
)

func (m MethType) String() string {
	switch m {
	case MethTypeMCG:
		return "mcg"
	default:
		return "mch"
	}
}

// Title returns the display form used in plot titles.
func (m MethType) Title() string {
	switch m {
	case MethTypeMCG:
		return "mCG"
	default:
		return "mCH"
	}
}

func NewMethType(field string) MethType {
	switch field {
	case "mcg", "mCG", "cg":
		return MethTypeMCG
	case "mch", "mCH", "ch":
		return MethTypeMCH
	default:
		return MethTypeMCH // default to mch
	}
}

// Level selects which methylation value column to plot.
type Level int

const (
	LevelNormalized Level = iota
	LevelOriginal
)

func (l Level) String() string {
	switch l {
	case LevelOriginal:
		return "original"
	default:
		return "normalized"
	}
}

func NewLevel(field string) Level {
	switch field {
	case "original", "orig", "raw":
		return LevelOriginal
	case "normalized", "norm":
		return LevelNormalized
	default:
		return LevelNormalized
	}
}
