package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/pumpkinbots/partbot/internal/application/ports"
)

var _ ports.PageFetcher = (*PageFetcher)(nil)

// maxBodyBytes límite de lectura del cuerpo de la página.
const maxBodyBytes = 4 << 20

// PageFetcher descarga páginas de proveedores y las reduce a texto plano.
type PageFetcher struct {
	userAgent    string
	snippetChars int
	httpClient   *http.Client
}

// NewPageFetcher construye el fetcher con agente de navegador, timeout y tamaño de fragmento.
func NewPageFetcher(userAgent string, timeout time.Duration, snippetChars int) *PageFetcher {
	return &PageFetcher{
		userAgent:    userAgent,
		snippetChars: snippetChars,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Fetch descarga la URL. Un status fuera de 2xx o un fallo de red devuelve error.
func (f *PageFetcher) Fetch(ctx context.Context, url string) (*ports.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: crear request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: charset: %w", url, err)
	}
	text, err := ExtractText(body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return &ports.Page{URL: url, FullText: text, Snippet: Truncate(text, f.snippetChars)}, nil
}

// ExtractText recorre el HTML y devuelve el texto visible con espacios colapsados.
// Se omiten script, style, noscript, svg y template.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "svg", "template":
				return
			case "meta":
				// La descripción y el título del producto suelen estar en meta tags.
				if content := metaContent(n); content != "" {
					b.WriteString(content)
					b.WriteByte(' ')
				}
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func metaContent(n *html.Node) string {
	var name, content string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "name", "property":
			name = strings.ToLower(a.Val)
		case "content":
			content = a.Val
		}
	}
	switch name {
	case "description", "og:title", "og:description", "product:retailer_item_id":
		return strings.TrimSpace(content)
	}
	return ""
}

// Truncate corta el texto a max runas sin partir un carácter UTF-8.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	i := 0
	for pos := range text {
		if i == max {
			return text[:pos]
		}
		i++
	}
	return text
}
