// Package view はリクエスト単位の画面モデルとHTMLレンダリングを提供する。
// 画面上の要素は固定IDで管理し、存在しない要素への操作は何もしない。
package view

import "strings"

// 画面要素のID
const (
	IDMessage          = "message"
	IDLoading          = "loading"
	IDUserName         = "userName"
	IDUserEmail        = "userEmail"
	IDUserRegistration = "userRegistration"
	IDUserLastLogin    = "userLastLogin"
	IDWelcomeMessage   = "welcomeMessage"
	IDUserAvatar       = "userAvatar"
	IDLogoutButton     = "logoutButton"
	IDRefreshButton    = "refreshButton"
)

// NavItemClass はナビゲーション項目に付与するクラス。
const NavItemClass = "nav-item"

// Element は画面上の1要素。
type Element struct {
	ID     string
	Text   string
	Hidden bool

	classes []string
	attrs   map[string]string
}

// NewElement は要素を生成する。
func NewElement(id string) *Element {
	return &Element{ID: id, attrs: make(map[string]string)}
}

// SetText はテキストを置き換える。
func (e *Element) SetText(text string) {
	e.Text = text
}

// SetClassName はクラス属性全体を置き換える。
func (e *Element) SetClassName(className string) {
	e.classes = strings.Fields(className)
}

// ClassName はクラス属性の値を返す。
func (e *Element) ClassName() string {
	return strings.Join(e.classes, " ")
}

// HasClass はクラスが付与されているかを返す。
func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass はクラスを追加する。既に付与済みのクラスは無視する。
func (e *Element) AddClass(classes ...string) {
	for _, c := range classes {
		if !e.HasClass(c) {
			e.classes = append(e.classes, c)
		}
	}
}

// RemoveClass はクラスを取り除く。
func (e *Element) RemoveClass(classes ...string) {
	kept := e.classes[:0]
	for _, c := range e.classes {
		remove := false
		for _, r := range classes {
			if c == r {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, c)
		}
	}
	e.classes = kept
}

// SetAttr は属性を設定する。
func (e *Element) SetAttr(name, value string) {
	e.attrs[name] = value
}

// Attr は属性の値を返す。
func (e *Element) Attr(name string) string {
	return e.attrs[name]
}

// NavItem はナビゲーションのリンク項目。
type NavItem struct {
	*Element
	Href  string
	Label string
}
