package core

// Category is the closed set of spending categories. Free-form strings are
// rejected at the entry boundary; Outro is the explicit catch-all, chosen
// by the user rather than silently applied to typos.
type Category string

const (
	Compras     Category = "Compras"
	Alimentacao Category = "Alimentação"
	Transporte  Category = "Transporte"
	Casa        Category = "Casa"
	Lazer       Category = "Lazer"
	Saude       Category = "Saúde"
	Outro       Category = "Outro"
)

// Categories lists every valid category in presentation order.
func Categories() []Category {
	return []Category{Compras, Alimentacao, Transporte, Casa, Lazer, Saude, Outro}
}

func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case Compras, Alimentacao, Transporte, Casa, Lazer, Saude, Outro:
		return true
	default:
		return false
	}
}

// Icon is a total mapping from category to its presentation glyph.
func (c Category) Icon() string {
	switch c {
	case Compras:
		return "🛍️"
	case Alimentacao:
		return "🍔"
	case Transporte:
		return "🚗"
	case Casa:
		return "🏠"
	case Lazer:
		return "🎮"
	case Saude:
		return "💊"
	default:
		return "💰"
	}
}

// ParseCategory converts a raw string into a Category, rejecting anything
// outside the enumeration.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}
