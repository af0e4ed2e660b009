package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"path"
	"strings"

	"golang.org/x/text/message"

	"github.com/hitoshi/accountdash/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "templates/layout.html"

// FormValues は再表示するフォーム入力値。パスワードは保持しない。
type FormValues struct {
	Email    string
	FullName string
}

// PageData はテンプレートに渡すデータ。
type PageData struct {
	Title     string
	Page      *Page
	Session   *model.Session
	CSRFToken string
	Lang      string
	Form      FormValues
	Printer   *message.Printer
}

// T は翻訳キーをリクエストの言語で解決する。
func (d *PageData) T(key string, args ...any) string {
	if d.Printer == nil {
		return key
	}
	return d.Printer.Sprintf(key, args...)
}

// El は指定IDの要素を返す。存在しない場合はnil。
func (d *PageData) El(id string) *Element {
	if d.Page == nil {
		return nil
	}
	return d.Page.Element(id)
}

// Redirect は予約された画面遷移を返す。
func (d *PageData) Redirect() *Navigation {
	if d.Page == nil {
		return nil
	}
	return d.Page.Navigation()
}

// Renderer は埋め込みテンプレートで画面を描画する。
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer はレイアウトと各画面テンプレートを組み合わせてRendererを生成する。
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		t, err := template.ParseFS(templatesFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render は画面を描画する。予約された画面遷移があればRefreshヘッダーを付与する。
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data *PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template: %s", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if nav := data.Redirect(); nav != nil {
		w.Header().Set("Refresh", RefreshHeader(nav))
	}
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// RefreshHeader はRefreshヘッダーの値を返す。秒未満は切り上げる。
func RefreshHeader(nav *Navigation) string {
	secs := int(math.Ceil(nav.Delay.Seconds()))
	return fmt.Sprintf("%d; url=%s", secs, nav.Path)
}

// StaticHandler は埋め込みの静的ファイルを配信するハンドラーを返す。
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
