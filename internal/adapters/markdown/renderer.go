// Package markdown implements the Markdown Renderer: goldmark parsing
// for one of three flavors, a chroma-driven fenced-code pass, and an AST
// transform that rewrites intra-doc .md links to .html.
//
// Raw HTML is a trust boundary: when a BookConfig's AllowRawHTML is true,
// raw HTML nodes in the source pass through unchanged into the rendered
// page. Only enable it for input you trust.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gtext "github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

// chromaTheme is the fixed syntax highlighting theme the tokenize-then-style
// rendering pass renders against.
const chromaTheme = "monokai"

// Renderer implements usecases.MarkdownRenderer.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer { return &Renderer{} }

var _ usecases.MarkdownRenderer = (*Renderer)(nil)

// Render parses source with the extension set selected by flavor, highlights
// fenced code per highlight/allowRawHTML, and rewrites intra-doc .md links
// to .html. A goldmark parse failure never reaches the caller: goldmark
// degrades gracefully on malformed input, so MarkdownError is never
// constructed here.
func (r *Renderer) Render(source []byte, flavor entities.MarkdownFlavor, highlight, allowRawHTML bool) (template.HTML, []usecases.Diagnostic) {
	var diags []usecases.Diagnostic

	var exts []goldmark.Extender
	unsafe := allowRawHTML
	switch flavor {
	case entities.FlavorPlain:
		// Bare CommonMark: no extensions.
	case entities.FlavorMDX:
		// Component-like tag syntax needs raw passthrough, so mdx passes every
		// raw HTML node through unchanged (including <script>), regardless of
		// the allow-html flag.
		exts = append(exts, extension.GFM)
		unsafe = true
	case entities.FlavorGFM:
		fallthrough
	default:
		exts = append(exts, extension.GFM)
	}

	codeRenderer := &codeBlockRenderer{highlight: highlight, unsafe: unsafe, diagnostics: &diags}
	rendererOpts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(codeRenderer, 100)),
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(linkRewriteTransformer{}, 999)),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)

	var buf bytes.Buffer
	if err := md.Convert(source, &buf); err != nil {
		// Never happens in practice (goldmark doesn't fail on malformed
		// input) but degrade to an escaped block rather than abort the page.
		return template.HTML("<pre>" + html.EscapeString(string(source)) + "</pre>"), diags
	}
	return template.HTML(buf.String()), diags
}

// codeBlockRenderer overrides goldmark's default fenced-code rendering:
// a "mermaid" fence is emitted untouched for the client-side component, a
// known language with highlighting enabled goes through chroma, everything
// else falls back to an escaped <pre><code>.
type codeBlockRenderer struct {
	highlight   bool
	unsafe      bool
	diagnostics *[]usecases.Diagnostic
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
}

// renderRawHTML overrides goldmark's default inline-raw-HTML rendering.
// goldmark's own "unsafe" toggle discards the node to the literal comment
// "<!-- raw HTML omitted -->"; the spec instead requires it to survive as
// HTML-escaped text, so this writes the escaped segment bytes when untrusted
// and the raw bytes unchanged when trusted.
func (r *codeBlockRenderer) renderRawHTML(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	node := n.(*ast.RawHTML)
	for i := 0; i < node.Segments.Len(); i++ {
		seg := node.Segments.At(i)
		r.writeHTML(w, seg.Value(source))
	}
	return ast.WalkSkipChildren, nil
}

// renderHTMLBlock is renderRawHTML's block-level counterpart (e.g. a bare
// <script>...</script> block rather than inline raw HTML in a paragraph).
func (r *codeBlockRenderer) renderHTMLBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	node := n.(*ast.HTMLBlock)
	if entering {
		for i := 0; i < node.Lines().Len(); i++ {
			seg := node.Lines().At(i)
			r.writeHTML(w, seg.Value(source))
		}
		return ast.WalkContinue, nil
	}
	if node.HasClosure() {
		r.writeHTML(w, node.ClosureLine.Value(source))
	}
	return ast.WalkContinue, nil
}

// writeHTML writes raw bytes unchanged when trusted, HTML-escaped otherwise.
func (r *codeBlockRenderer) writeHTML(w util.BufWriter, b []byte) {
	if r.unsafe {
		_, _ = w.Write(b)
		return
	}
	_, _ = w.WriteString(html.EscapeString(string(b)))
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*ast.FencedCodeBlock)

	lang := ""
	if node.Info != nil {
		info := string(node.Info.Segment.Value(source))
		fields := strings.Fields(info)
		if len(fields) > 0 {
			lang = strings.ToLower(fields[0])
		}
	}

	var codeBuf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		codeBuf.Write(seg.Value(source))
	}
	code := codeBuf.String()

	if lang == "mermaid" {
		fmt.Fprintf(w, "<pre class=\"mermaid\">%s</pre>\n", html.EscapeString(code))
		return ast.WalkSkipChildren, nil
	}

	if r.highlight && lang != "" {
		if lexer := lexers.Get(lang); lexer != nil {
			out, err := highlightCode(lexer, code)
			if err == nil {
				_, _ = w.WriteString(out)
				return ast.WalkSkipChildren, nil
			}
			if r.diagnostics != nil {
				*r.diagnostics = append(*r.diagnostics, usecases.Diagnostic{
					Err: &entities.HighlightError{Language: lang, Err: err},
				})
			}
		}
	}

	fmt.Fprintf(w, "<pre><code>%s</code></pre>\n", html.EscapeString(code))
	return ast.WalkSkipChildren, nil
}

// highlightCode runs chroma's classic tokenize-then-style pass: Tokenise
// produces an iterator over lexical tokens, the HTML formatter renders each
// token as a class-tagged span styled by the fixed theme.
func highlightCode(lexer chroma.Lexer, code string) (string, error) {
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	style := styles.Get(chromaTheme)
	if style == nil {
		style = styles.Fallback
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true))
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// linkRewriteTransformer implements the link post-processing pass:
// any link destination without a scheme ending in .md or .md#fragment is
// rewritten to .html, preserving query/fragment. It runs as an AST
// transform so it composes with every flavor and extension set.
type linkRewriteTransformer struct{}

func (linkRewriteTransformer) Transform(doc *ast.Document, _ gtext.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = rewriteMDLink(link.Destination)
		}
		return ast.WalkContinue, nil
	})
}

// rewriteMDLink rewrites dest in place per the link post-processing rule.
// It is idempotent: a destination already ending .html (or carrying a
// scheme) is returned unchanged.
func rewriteMDLink(dest []byte) []byte {
	s := string(dest)
	if hasScheme(s) {
		return dest
	}

	path := s
	rest := ""
	if idx := strings.IndexAny(s, "?#"); idx >= 0 {
		path = s[:idx]
		rest = s[idx:]
	}

	if !strings.HasSuffix(path, ".md") {
		return dest
	}

	return []byte(strings.TrimSuffix(path, ".md") + ".html" + rest)
}

func hasScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(s, "//")
}
