package core

import "strings"

// Theme is the colour theme of a category template.
type Theme string

const (
	ThemeRed        Theme = "red"
	ThemePoppy      Theme = "poppy"
	ThemeOrange     Theme = "orange"
	ThemeTan        Theme = "tan"
	ThemeYellow     Theme = "yellow"
	ThemeGreen      Theme = "green"
	ThemeTeal       Theme = "teal"
	ThemeSky        Theme = "sky"
	ThemePeriwinkle Theme = "periwinkle"
	ThemePurple     Theme = "purple"
	ThemeBubblegum  Theme = "bubblegum"
	ThemeMagenta    Theme = "magenta"
)

const (
	colorBlack = "#000000"
	colorWhite = "#FFFFFF"
)

type themeInfo struct {
	main string
	kana string
}

var themes = map[Theme]themeInfo{
	ThemeRed:        {main: "#FE4A49", kana: "レッド"},
	ThemePoppy:      {main: "#FF5E5E", kana: "ポピーレッド"},
	ThemeOrange:     {main: "#FF9F43", kana: "オレンジ"},
	ThemeTan:        {main: "#D2B48C", kana: "タン"},
	ThemeYellow:     {main: "#FFD23F", kana: "イエロー"},
	ThemeGreen:      {main: "#3BB273", kana: "グリーン"},
	ThemeTeal:       {main: "#5BC0BE", kana: "ティールブルー"},
	ThemeSky:        {main: "#7FC8F8", kana: "スカイブルー"},
	ThemePeriwinkle: {main: "#B8B8F3", kana: "ペリウィンクル"},
	ThemePurple:     {main: "#8E44AD", kana: "パープル"},
	ThemeBubblegum:  {main: "#F7A8C4", kana: "バブルガム"},
	ThemeMagenta:    {main: "#C2185B", kana: "マジェンダ"},
}

// Themes lists every theme in declaration order.
func Themes() []Theme {
	return []Theme{
		ThemeRed, ThemePoppy, ThemeOrange, ThemeTan, ThemeYellow, ThemeGreen,
		ThemeTeal, ThemeSky, ThemePeriwinkle, ThemePurple, ThemeBubblegum, ThemeMagenta,
	}
}

func (t Theme) Valid() bool {
	_, ok := themes[t]
	return ok
}

// MainColor returns the theme colour as #RRGGBB, or "" for an unknown theme.
func (t Theme) MainColor() string {
	return themes[t].main
}

// AccentColor is the foreground colour readable on top of MainColor.
func (t Theme) AccentColor() string {
	switch t {
	case ThemeBubblegum, ThemeOrange, ThemePeriwinkle, ThemePoppy, ThemeSky, ThemeTan, ThemeTeal, ThemeYellow:
		return colorBlack
	case ThemeMagenta, ThemePurple, ThemeRed, ThemeGreen:
		return colorWhite
	default:
		return ""
	}
}

// Name is the capitalised raw value, e.g. "Periwinkle".
func (t Theme) Name() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (t Theme) Kana() string {
	return themes[t].kana
}

// ParseTheme accepts a raw value case-insensitively.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidTheme
	}
	return t, nil
}
