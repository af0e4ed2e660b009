package view

import (
	"strconv"
	"time"

	"github.com/hitoshi/accountdash/internal/model"
)

const (
	messageBaseClass = "fixed top-4 right-4 z-50 p-4 rounded-lg shadow-lg max-w-sm"

	// MessageAutoHide は通知を自動で隠すまでの時間。
	MessageAutoHide = 5 * time.Second
)

// messageKindClass は通知種別ごとのクラス。
func messageKindClass(kind model.MessageKind) string {
	switch kind {
	case model.MessageSuccess:
		return "bg-green-500 text-white"
	case model.MessageError:
		return "bg-red-500 text-white"
	default:
		return "bg-blue-500 text-white"
	}
}

// Navigation は遅延付きの画面遷移。
type Navigation struct {
	Path  string
	Delay time.Duration
}

// Page は1リクエストで描画する画面の状態。
// 通知・ローディング表示・画面遷移のハンドルとして各処理に渡される。
type Page struct {
	elements   map[string]*Element
	navItems   []*NavItem
	navigation *Navigation
	message    model.MessageKind
}

// NewPage は指定IDの要素を持つPageを生成する。
func NewPage(ids ...string) *Page {
	p := &Page{elements: make(map[string]*Element, len(ids))}
	for _, id := range ids {
		p.AddElement(id)
	}
	return p
}

// AddElement は要素を追加する。既に存在する場合は既存の要素を返す。
func (p *Page) AddElement(id string) *Element {
	if el, ok := p.elements[id]; ok {
		return el
	}
	el := NewElement(id)
	p.elements[id] = el
	return el
}

// Element は指定IDの要素を返す。存在しない場合はnil。
func (p *Page) Element(id string) *Element {
	return p.elements[id]
}

// Has は指定IDの要素が存在するかを返す。
func (p *Page) Has(id string) bool {
	_, ok := p.elements[id]
	return ok
}

// AddNavItem はナビゲーション項目を追加する。
func (p *Page) AddNavItem(href, label string) *NavItem {
	el := NewElement("")
	el.AddClass(NavItemClass)
	item := &NavItem{Element: el, Href: href, Label: label}
	p.navItems = append(p.navItems, item)
	return item
}

// NavItems はナビゲーション項目を返す。
func (p *Page) NavItems() []*NavItem {
	return p.navItems
}

// ShowMessage は通知を表示する。通知要素がなければ作成する。
// 直前の通知は上書きされる。
func (p *Page) ShowMessage(text string, kind model.MessageKind) {
	el := p.AddElement(IDMessage)
	el.SetClassName(messageBaseClass + " " + messageKindClass(kind))
	el.SetText(text)
	el.SetAttr("role", "alert")
	el.SetAttr("data-autohide-ms", strconv.FormatInt(MessageAutoHide.Milliseconds(), 10))
	el.Hidden = false
	p.message = kind
}

// HideMessage は通知を隠す。
func (p *Page) HideMessage() {
	if el := p.Element(IDMessage); el != nil {
		el.Hidden = true
	}
}

// Message は表示中の通知テキストと種別を返す。非表示の場合はokがfalse。
func (p *Page) Message() (text string, kind model.MessageKind, ok bool) {
	el := p.Element(IDMessage)
	if el == nil || el.Hidden || el.Text == "" {
		return "", "", false
	}
	return el.Text, p.message, true
}

// ShowLoading はローディング表示を切り替える。要素がなければ何もしない。
func (p *Page) ShowLoading(show bool) {
	if el := p.Element(IDLoading); el != nil {
		el.Hidden = !show
	}
}

// Navigate は遅延付きの画面遷移を予約する。後から呼ばれたものが優先される。
func (p *Page) Navigate(path string, delay time.Duration) {
	p.navigation = &Navigation{Path: path, Delay: delay}
}

// Navigation は予約された画面遷移を返す。なければnil。
func (p *Page) Navigation() *Navigation {
	return p.navigation
}
