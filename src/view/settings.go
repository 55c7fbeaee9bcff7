package view

import (
	"fmt"

	"notes-app/src/domain"
)

// Theme ダーク/ライトの表示テーマ
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// FontSize 本文の表示サイズ
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// Settings 表示設定。描画層だけが参照する
type Settings struct {
	Theme          Theme    `json:"theme" mapstructure:"theme"`
	FontSize       FontSize `json:"fontSize" mapstructure:"font_size"`
	CompactMode    bool     `json:"compactMode" mapstructure:"compact_mode"`
	DefaultSection Section  `json:"defaultSection" mapstructure:"default_section"`
}

// DefaultSettings 初期表示設定
func DefaultSettings() Settings {
	return Settings{
		Theme:          ThemeDark,
		FontSize:       FontMedium,
		CompactMode:    false,
		DefaultSection: SectionActive,
	}
}

// Validate 未知の値を拒否する
func (s Settings) Validate() error {
	switch s.Theme {
	case ThemeDark, ThemeLight:
	default:
		return domain.NewValidationError("theme", fmt.Sprintf("unknown theme %q (dark, light)", s.Theme))
	}

	switch s.FontSize {
	case FontSmall, FontMedium, FontLarge:
	default:
		return domain.NewValidationError("fontSize", fmt.Sprintf("unknown font size %q (small, medium, large)", s.FontSize))
	}

	if !s.DefaultSection.IsValid() {
		return domain.NewValidationError("defaultSection", fmt.Sprintf("unknown section %q (active, favorites, trash)", s.DefaultSection))
	}
	return nil
}

// PreviewLength 一覧に表示する本文の最大文字数
func (s Settings) PreviewLength() int {
	switch s.FontSize {
	case FontSmall:
		return 40
	case FontLarge:
		return 120
	default:
		return 80
	}
}
