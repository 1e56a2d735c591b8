package rustmacro

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/spring-rs/spring-lsp/internal/position"
)

// Parser wraps a reusable tree-sitter Rust parser, mirroring the
// one-parser-per-language wrapper the teacher's world scanner uses.
type Parser struct {
	sitterParser *sitter.Parser
}

// NewParser constructs a reusable Rust parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Parser{sitterParser: p}
}

// Parse walks every item in text and recognizes the framework's
// attribute macros. A syntax error yields a non-nil ParseError alongside
// a best-effort RustDocument built from whatever tree-sitter could
// recover.
func (p *Parser) Parse(text string) (*RustDocument, *ParseError) {
	content := []byte(text)
	tree, err := p.sitterParser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &ParseError{Message: "failed to parse Rust source: " + err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	var parseErr *ParseError
	if root.HasError() {
		parseErr = &ParseError{
			Range:   position.RangeFromByteSpan(text, int(root.StartByte()), int(root.EndByte())),
			Message: "Rust source contains syntax errors; partial results shown",
		}
	}

	lines := strings.Split(text, "\n")
	doc := &RustDocument{Text: text}
	walkItems(root, content, lines, doc)

	return doc, parseErr
}

func getNodeText(content []byte, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

// walkItems recurses over node's named children, handling struct_item
// and function_item specially and recursing into anything else (module
// bodies, impl blocks) to find nested items, mirroring the teacher's
// walkNode default-recurse pattern.
func walkItems(node *sitter.Node, content []byte, lines []string, doc *RustDocument) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "struct_item":
			handleStruct(child, content, lines, doc)
		case "function_item":
			handleFunction(child, content, lines, doc)
		default:
			walkItems(child, content, lines, doc)
		}
	}
}

func nodeLineSpan(n *sitter.Node) (start, end int) {
	return int(n.StartPoint().Row) + 1, int(n.EndPoint().Row) + 1
}

// precedingAttributes walks backward over node's preceding `attribute_item`
// siblings (outer attributes like `#[derive(Service)]` or `#[get(...)]` sit
// beside struct_item/function_item in the grammar, not inside it) and
// returns them in source order.
func precedingAttributes(node *sitter.Node) []*sitter.Node {
	var attrs []*sitter.Node
	for sib := node.PrevNamedSibling(); sib != nil && sib.Type() == "attribute_item"; sib = sib.PrevNamedSibling() {
		attrs = append(attrs, sib)
	}
	for i, j := 0, len(attrs)-1; i < j; i, j = i+1, j-1 {
		attrs[i], attrs[j] = attrs[j], attrs[i]
	}
	return attrs
}

// itemSpan returns the line and byte span of node widened to cover any
// outer attributes preceding it, so derive/route/job/config attributes
// show up in the extracted body and in the macro's own Range.
func itemSpan(node *sitter.Node) (startLine, endLine int, startByte, endByte uint32) {
	startLine, endLine = nodeLineSpan(node)
	startByte, endByte = node.StartByte(), node.EndByte()
	if attrs := precedingAttributes(node); len(attrs) > 0 {
		startLine = int(attrs[0].StartPoint().Row) + 1
		startByte = attrs[0].StartByte()
	}
	return
}

func extractBody(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < startLine || startLine > len(lines) {
		return ""
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	return strings.Join(lines[startLine-1:endLine], "\n")
}

func handleStruct(node *sitter.Node, content []byte, lines []string, doc *RustDocument) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := getNodeText(content, nameNode)
	startLine, endLine, startByte, endByte := itemSpan(node)
	body := extractBody(lines, startLine, endLine)
	rng := position.RangeFromByteSpan(doc.Text, int(startByte), int(endByte))

	derives := extractDerives(body)
	isService := containsFold(derives, "Service")
	isConfigurable := containsFold(derives, "Configurable")

	if isService {
		fields := extractInjectFields(body)
		doc.Macros = append(doc.Macros, FrameworkMacro{
			Kind: KindDeriveService, Range: rng, StructName: name, Fields: fields,
		})
	}
	if isConfigurable {
		prefix := extractConfigPrefix(body)
		fields := extractConfigFields(body)
		doc.Macros = append(doc.Macros, FrameworkMacro{
			Kind: KindConfigurableStruct, Range: rng, StructName: name,
			ConfigPrefix: prefix, ConfigFields: fields,
		})
	}
	if !isService {
		for _, inj := range extractStandaloneInjects(body) {
			doc.Macros = append(doc.Macros, FrameworkMacro{
				Kind: KindInject, Range: rng, InjectKind: inj.InjectKind, ComponentName: inj.ComponentName,
			})
		}
	}
}

var httpMethods = []string{"get", "post", "put", "patch", "delete", "head", "options"}

func handleFunction(node *sitter.Node, content []byte, lines []string, doc *RustDocument) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := getNodeText(content, nameNode)
	startLine, endLine, startByte, endByte := itemSpan(node)
	body := extractBody(lines, startLine, endLine)
	rng := position.RangeFromByteSpan(doc.Text, int(startByte), int(endByte))

	attrLines := leadingAttributeLines(body)

	if route, ok := extractRoute(attrLines, name); ok {
		route.Range = rng
		doc.Macros = append(doc.Macros, route)
	}
	if job, ok := extractJob(attrLines, name); ok {
		job.Range = rng
		doc.Macros = append(doc.Macros, job)
	}
	if hasAttribute(attrLines, "#[component]") {
		doc.Macros = append(doc.Macros, FrameworkMacro{Kind: KindComponentFn, Range: rng, FnName: name})
	}
	if configurator, ok := extractAutoConfig(attrLines); ok {
		doc.Macros = append(doc.Macros, FrameworkMacro{Kind: KindAutoConfig, Range: rng, ConfiguratorName: configurator})
	}
}

// leadingAttributeLines returns every line up to (not including) the
// first line that declares the `fn` keyword, trimmed — the span a Rust
// item's outer attributes occupy before its signature.
func leadingAttributeLines(body string) []string {
	var attrs []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "fn ") || strings.HasPrefix(trimmed, "fn(") {
			break
		}
		attrs = append(attrs, trimmed)
	}
	return attrs
}

func hasAttribute(lines []string, literal string) bool {
	for _, l := range lines {
		if strings.Contains(l, literal) {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}
