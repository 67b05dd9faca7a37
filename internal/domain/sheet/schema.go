package sheet

import (
	"errors"
	"strings"
)

// Column identificador lógico de una columna. La posición física se resuelve por encabezado.
type Column string

// Absent índice devuelto cuando ningún encabezado coincide con la columna.
const Absent = -1

// ErrColumnAbsent se devuelve al escribir en una columna que la tabla no tiene.
var ErrColumnAbsent = errors.New("sheet: columna ausente")

// ColumnSpec describe cómo reconocer una columna en el encabezado.
// Canonical es el nombre que se escribe al aprovisionar la tabla.
// Exact se compara contra el encabezado completo; Contains por subcadena, en orden.
// Exclude descarta encabezados que contienen alguno de esos fragmentos.
type ColumnSpec struct {
	Column    Column
	Canonical string
	Exact     []string
	Contains  []string
	Exclude   []string
}

// Schema conjunto de columnas conocidas de una tabla.
type Schema struct {
	Table   string
	Columns []ColumnSpec
}

// Header devuelve el encabezado canónico para aprovisionar la tabla.
func (s Schema) Header() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Canonical
	}
	return out
}

// Layout posición física de cada columna lógica.
type Layout map[Column]int

// Index devuelve la posición de la columna o Absent.
func (l Layout) Index(col Column) int {
	if i, ok := l[col]; ok {
		return i
	}
	return Absent
}

// Resolve asigna cada columna del esquema a un encabezado de la tabla.
// Primero se resuelven las coincidencias exactas de todas las columnas; después
// las coincidencias por subcadena. Un encabezado se asigna a una sola columna y,
// dentro de cada columna, el primer encabezado que coincide gana.
func Resolve(s Schema, header []string) Layout {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalize(h)
	}
	claimed := make([]bool, len(header))
	layout := make(Layout, len(s.Columns))

	for _, cs := range s.Columns {
		names := append([]string{cs.Canonical}, cs.Exact...)
		if i := firstMatch(norm, claimed, func(h string) bool {
			for _, n := range names {
				if h == normalize(n) {
					return true
				}
			}
			return false
		}); i != Absent {
			layout[cs.Column] = i
			claimed[i] = true
		}
	}

	for _, cs := range s.Columns {
		if _, ok := layout[cs.Column]; ok {
			continue
		}
		for _, frag := range cs.Contains {
			frag = normalize(frag)
			i := firstMatch(norm, claimed, func(h string) bool {
				return strings.Contains(h, frag) && !containsAny(h, cs.Exclude)
			})
			if i != Absent {
				layout[cs.Column] = i
				claimed[i] = true
				break
			}
		}
	}
	return layout
}

func firstMatch(norm []string, claimed []bool, pred func(string) bool) int {
	for i, h := range norm {
		if claimed[i] || h == "" {
			continue
		}
		if pred(h) {
			return i
		}
	}
	return Absent
}

func containsAny(h string, frags []string) bool {
	for _, f := range frags {
		if strings.Contains(h, normalize(f)) {
			return true
		}
	}
	return false
}

// normalize pasa a minúsculas, quita puntuación y colapsa espacios.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			space = false
		case r == '#':
			b.WriteRune(r)
			space = false
		default:
			if !space && b.Len() > 0 {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
