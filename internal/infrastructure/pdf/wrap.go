package pdf

// SplitTitle corta el título por número de caracteres (no por palabras): la primera
// línea tiene como máximo width caracteres y el resto, si existe, va a una segunda
// línea sin más cortes. Un resto demasiado largo se sale de la columna; es una
// limitación conocida de la plantilla.
func SplitTitle(title string, width int) (first, rest string) {
	r := []rune(title)
	if width <= 0 || len(r) <= width {
		return title, ""
	}
	return string(r[:width]), string(r[width:])
}

// JoinTitle inversa de SplitTitle.
func JoinTitle(first, rest string) string {
	return first + rest
}
