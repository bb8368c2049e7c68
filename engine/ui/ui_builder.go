package ui

// UIBuilderOption is a functional option for configuring a UI.
type UIBuilderOption func(*ui)

// WithFont replaces the built-in font with a TrueType or OpenType font.
//
// Parameters:
//   - data: the font file contents
//
// Returns:
//   - UIBuilderOption: the option
func WithFont(data []byte) UIBuilderOption {
	return func(u *ui) {
		if len(data) > 0 {
			u.fontData = data
		}
	}
}

// WithFontSize sets the point size panels are painted with.
func WithFontSize(size float64) UIBuilderOption {
	return func(u *ui) {
		if size > 0 {
			u.fontSize = size
		}
	}
}
