package catalog

// Kind names one lookup list served to the intake form
type Kind string

const (
	KindIdentificationType Kind = "tipo-identificacion"
	KindDepartment         Kind = "departamentos"
	KindCity               Kind = "ciudades"
	KindEPS                Kind = "eps"
	KindPension            Kind = "pension"
)

// Country restricts departments and cities
const Country = "Colombia"

// Kinds lists every supported catalog
var Kinds = []Kind{KindIdentificationType, KindDepartment, KindCity, KindEPS, KindPension}

// Field is the JSON key each entry is published under
func (k Kind) Field() string {
	switch k {
	case KindIdentificationType:
		return "descripcion"
	case KindDepartment:
		return "departamento"
	case KindCity:
		return "ciudad"
	case KindEPS:
		return "eps"
	case KindPension:
		return "pension"
	}
	return ""
}

func (k Kind) IsValid() bool {
	return k.Field() != ""
}

// NeedsDepartment reports whether the list is scoped to a department
func (k Kind) NeedsDepartment() bool {
	return k == KindCity
}

// Query selects one catalog list
type Query struct {
	Kind       Kind
	Department string
}

// Entries renders values in the published shape, e.g. [{"eps": "Sura"}]
func Entries(kind Kind, values []string) []map[string]string {
	out := make([]map[string]string, 0, len(values))
	field := kind.Field()
	for _, v := range values {
		out = append(out, map[string]string{field: v})
	}
	return out
}
