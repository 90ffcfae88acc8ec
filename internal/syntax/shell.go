package syntax

import (
	"context"
	"sort"
	"strings"

	shsyntax "mvdan.cc/sh/v3/syntax"

	"github.com/temirov/shellhint/internal/geometry"
)

const (
	concatenationNodeType        = "concatenation"
	rawStringNodeType            = "raw_string"
	stringNodeType               = "string"
	simpleExpansionNodeType      = "simple_expansion"
	expansionNodeType            = "expansion"
	commandSubstitutionNodeType  = "command_substitution"
	arithmeticExpansionNodeType  = "arithmetic_expansion"
	processSubstitutionNodeType  = "process_substitution"
	variableAssignmentNodeType   = "variable_assignment"
	redirectedStatementNodeType  = "redirected_statement"
	fileRedirectNodeType         = "file_redirect"
	listNodeType                 = "list"
	pipelineNodeType             = "pipeline"
	compoundStatementNodeType    = "compound_statement"
	lineContinuationMarker       = "\\"
	shellParserSourceName        = ""
	backgroundSeparator          = "&"
	sequentialSeparator          = ";"
	coprocessSeparator           = "|&"
	fallbackFieldSeparatorCutset = " \t\r"
)

// ShellParser parses bash with mvdan.cc/sh and shapes the result like the
// tree-sitter bash grammar. It does not need cgo and re-parses fully on edits.
// Source that fails to parse is recovered per logical line.
type ShellParser struct {
	variant shsyntax.LangVariant
}

type shellTree struct {
	source string
	root   *branch
}

// NewShellParser constructs a ShellParser for the bash dialect.
func NewShellParser() *ShellParser {
	return &ShellParser{variant: shsyntax.LangBash}
}

// Parse implements Parser. previous is ignored.
func (shellParser *ShellParser) Parse(ctx context.Context, source string, previous Tree) (Tree, error) {
	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}
	builder := shellTreeBuilder{source: source, index: geometry.NewLineIndex(source)}
	root := newBranch(ProgramNodeType, true, source, geometry.Range{
		Start: geometry.NewPosition(0, 0),
		End:   builder.index.PositionAt(len(source)),
	})

	file, parseError := shellParser.parse(source)
	if parseError == nil {
		builder.appendStatements(root, file.Stmts, 0)
		return &shellTree{source: source, root: root}, nil
	}

	for _, chunk := range logicalLines(source) {
		if contextError := ctx.Err(); contextError != nil {
			return nil, contextError
		}
		chunkFile, chunkError := shellParser.parse(source[chunk.start:chunk.end])
		if chunkError != nil {
			builder.appendFields(root, chunk.start, chunk.end)
			continue
		}
		builder.appendStatements(root, chunkFile.Stmts, chunk.start)
	}
	return &shellTree{source: source, root: root}, nil
}

func (shellParser *ShellParser) parse(source string) (*shsyntax.File, error) {
	parser := shsyntax.NewParser(shsyntax.Variant(shellParser.variant))
	return parser.Parse(strings.NewReader(source), shellParserSourceName)
}

func (tree *shellTree) Root() Node {
	return tree.root
}

func (tree *shellTree) Source() string {
	return tree.source
}

func (tree *shellTree) Edit(EditDelta) {}

type sourceChunk struct {
	start int
	end   int
}

// logicalLines splits source on newlines that are not escaped by a trailing
// line continuation marker.
func logicalLines(source string) []sourceChunk {
	var chunks []sourceChunk
	chunkStart := 0
	lineStart := 0
	for lineStart <= len(source) {
		newlineOffset := strings.IndexByte(source[lineStart:], '\n')
		if newlineOffset < 0 {
			chunks = append(chunks, sourceChunk{start: chunkStart, end: len(source)})
			break
		}
		lineEnd := lineStart + newlineOffset
		line := strings.TrimRight(source[lineStart:lineEnd], fallbackFieldSeparatorCutset)
		if !strings.HasSuffix(line, lineContinuationMarker) {
			chunks = append(chunks, sourceChunk{start: chunkStart, end: lineEnd})
			chunkStart = lineEnd + 1
		}
		lineStart = lineEnd + 1
	}
	return chunks
}

type shellTreeBuilder struct {
	source string
	index  geometry.LineIndex
}

func (builder shellTreeBuilder) span(base int, node shsyntax.Node) (int, int) {
	return base + int(node.Pos().Offset()), base + int(node.End().Offset())
}

func (builder shellTreeBuilder) newNode(nodeType string, named bool, startOffset int, endOffset int) *branch {
	if endOffset > len(builder.source) {
		endOffset = len(builder.source)
	}
	if startOffset > endOffset {
		startOffset = endOffset
	}
	return newBranch(nodeType, named, builder.source[startOffset:endOffset], geometry.Range{
		Start: builder.index.PositionAt(startOffset),
		End:   builder.index.PositionAt(endOffset),
	})
}

func (builder shellTreeBuilder) appendStatements(parent *branch, statements []*shsyntax.Stmt, base int) {
	for _, statement := range statements {
		parent.appendChild(builder.convertStatement(statement, base))
		if statement.Semicolon.IsValid() {
			separator := sequentialSeparator
			switch {
			case statement.Coprocess:
				separator = coprocessSeparator
			case statement.Background:
				separator = backgroundSeparator
			}
			separatorStart := base + int(statement.Semicolon.Offset())
			parent.appendChild(builder.newNode(separator, false, separatorStart, separatorStart+len(separator)))
		}
	}
}

func (builder shellTreeBuilder) convertStatement(statement *shsyntax.Stmt, base int) *branch {
	if statement == nil || statement.Cmd == nil {
		return nil
	}
	converted := builder.convertCommand(statement.Cmd, base)
	if len(statement.Redirs) == 0 || converted == nil {
		return converted
	}
	startOffset, endOffset := builder.span(base, statement.Cmd)
	for _, redirect := range statement.Redirs {
		redirectStart, redirectEnd := builder.span(base, redirect)
		if redirectStart < startOffset {
			startOffset = redirectStart
		}
		if redirectEnd > endOffset {
			endOffset = redirectEnd
		}
	}
	wrapper := builder.newNode(redirectedStatementNodeType, true, startOffset, endOffset)
	wrapper.appendChild(converted)
	for _, redirect := range statement.Redirs {
		redirectStart, redirectEnd := builder.span(base, redirect)
		redirectNode := builder.newNode(fileRedirectNodeType, true, redirectStart, redirectEnd)
		if redirect.Word != nil {
			redirectNode.appendChild(builder.convertWord(redirect.Word, base))
		}
		wrapper.appendChild(redirectNode)
	}
	return wrapper
}

func (builder shellTreeBuilder) convertCommand(command shsyntax.Command, base int) *branch {
	switch typed := command.(type) {
	case *shsyntax.CallExpr:
		return builder.convertCall(typed, base)
	case *shsyntax.BinaryCmd:
		nodeType := listNodeType
		if typed.Op == shsyntax.Pipe || typed.Op == shsyntax.PipeAll {
			nodeType = pipelineNodeType
		}
		startOffset, endOffset := builder.span(base, typed)
		converted := builder.newNode(nodeType, true, startOffset, endOffset)
		converted.appendChild(builder.convertStatement(typed.X, base))
		operator := typed.Op.String()
		operatorStart := base + int(typed.OpPos.Offset())
		converted.appendChild(builder.newNode(operator, false, operatorStart, operatorStart+len(operator)))
		converted.appendChild(builder.convertStatement(typed.Y, base))
		return converted
	default:
		return builder.convertCompound(command, base)
	}
}

func (builder shellTreeBuilder) convertCall(call *shsyntax.CallExpr, base int) *branch {
	startOffset, endOffset := builder.span(base, call)
	if len(call.Args) == 0 {
		if len(call.Assigns) == 1 {
			return builder.newNode(variableAssignmentNodeType, true, startOffset, endOffset)
		}
		converted := builder.newNode(compoundStatementNodeType, true, startOffset, endOffset)
		for _, assign := range call.Assigns {
			assignStart, assignEnd := builder.span(base, assign)
			converted.appendChild(builder.newNode(variableAssignmentNodeType, true, assignStart, assignEnd))
		}
		return converted
	}
	converted := builder.newNode(CommandNodeType, true, startOffset, endOffset)
	for _, assign := range call.Assigns {
		assignStart, assignEnd := builder.span(base, assign)
		converted.appendChild(builder.newNode(variableAssignmentNodeType, true, assignStart, assignEnd))
	}
	nameStart, nameEnd := builder.span(base, call.Args[0])
	commandName := builder.newNode(CommandNameNodeType, true, nameStart, nameEnd)
	commandName.appendChild(builder.convertWord(call.Args[0], base))
	converted.appendChild(commandName)
	for _, argument := range call.Args[1:] {
		converted.appendChild(builder.convertWord(argument, base))
	}
	return converted
}

func (builder shellTreeBuilder) convertWord(word *shsyntax.Word, base int) *branch {
	startOffset, endOffset := builder.span(base, word)
	if len(word.Parts) == 1 {
		return builder.convertWordPart(word.Parts[0], base)
	}
	converted := builder.newNode(concatenationNodeType, true, startOffset, endOffset)
	for _, part := range word.Parts {
		converted.appendChild(builder.convertWordPart(part, base))
	}
	return converted
}

func (builder shellTreeBuilder) convertWordPart(part shsyntax.WordPart, base int) *branch {
	startOffset, endOffset := builder.span(base, part)
	switch typed := part.(type) {
	case *shsyntax.Lit:
		return builder.newNode(WordNodeType, true, startOffset, endOffset)
	case *shsyntax.SglQuoted:
		return builder.newNode(rawStringNodeType, true, startOffset, endOffset)
	case *shsyntax.DblQuoted:
		converted := builder.newNode(stringNodeType, true, startOffset, endOffset)
		for _, inner := range typed.Parts {
			if _, literal := inner.(*shsyntax.Lit); literal {
				continue
			}
			converted.appendChild(builder.convertWordPart(inner, base))
		}
		return converted
	case *shsyntax.ParamExp:
		if typed.Short {
			return builder.newNode(simpleExpansionNodeType, true, startOffset, endOffset)
		}
		return builder.newNode(expansionNodeType, true, startOffset, endOffset)
	case *shsyntax.CmdSubst:
		converted := builder.newNode(commandSubstitutionNodeType, true, startOffset, endOffset)
		builder.appendStatements(converted, typed.Stmts, base)
		return converted
	case *shsyntax.ArithmExp:
		return builder.newNode(arithmeticExpansionNodeType, true, startOffset, endOffset)
	case *shsyntax.ProcSubst:
		converted := builder.newNode(processSubstitutionNodeType, true, startOffset, endOffset)
		builder.appendStatements(converted, typed.Stmts, base)
		return converted
	default:
		return builder.newNode(WordNodeType, true, startOffset, endOffset)
	}
}

// convertCompound keeps the statements nested anywhere inside a compound
// command as its direct children, in source order.
func (builder shellTreeBuilder) convertCompound(command shsyntax.Command, base int) *branch {
	startOffset, endOffset := builder.span(base, command)
	converted := builder.newNode(compoundNodeType(command), true, startOffset, endOffset)

	var nested []*shsyntax.Stmt
	shsyntax.Walk(command, func(node shsyntax.Node) bool {
		statement, isStatement := node.(*shsyntax.Stmt)
		if !isStatement {
			return true
		}
		nested = append(nested, statement)
		return false
	})
	sort.SliceStable(nested, func(left int, right int) bool {
		return nested[left].Pos().Offset() < nested[right].Pos().Offset()
	})
	builder.appendStatements(converted, nested, base)
	return converted
}

// appendFields recovers an unparsable chunk as whitespace separated words,
// starting a new command after every separator token.
func (builder shellTreeBuilder) appendFields(parent *branch, chunkStart int, chunkEnd int) {
	var current *branch
	commandStart := 0
	finishCommand := func() {
		if current != nil {
			parent.appendChild(current)
			current = nil
		}
	}
	isBlank := func(offset int) bool {
		return strings.IndexByte(fallbackFieldSeparatorCutset+"\n", builder.source[offset]) >= 0
	}
	offset := chunkStart
	for offset < chunkEnd {
		if isBlank(offset) {
			offset++
			continue
		}
		fieldEnd := offset
		for fieldEnd < chunkEnd && !isBlank(fieldEnd) {
			fieldEnd++
		}
		field := builder.source[offset:fieldEnd]
		switch {
		case field == lineContinuationMarker:
		case IsStatementSeparator(field):
			finishCommand()
			parent.appendChild(builder.newNode(field, false, offset, fieldEnd))
		case current == nil:
			commandStart = offset
			current = builder.newNode(CommandNodeType, true, offset, fieldEnd)
			commandName := builder.newNode(CommandNameNodeType, true, offset, fieldEnd)
			commandName.appendChild(builder.newNode(WordNodeType, true, offset, fieldEnd))
			current.appendChild(commandName)
		default:
			current.appendChild(builder.newNode(WordNodeType, true, offset, fieldEnd))
			current.span.End = builder.index.PositionAt(fieldEnd)
			current.text = builder.source[commandStart:fieldEnd]
		}
		offset = fieldEnd
	}
	finishCommand()
}

func compoundNodeType(command shsyntax.Command) string {
	switch command.(type) {
	case *shsyntax.IfClause:
		return "if_statement"
	case *shsyntax.WhileClause:
		return "while_statement"
	case *shsyntax.ForClause:
		return "for_statement"
	case *shsyntax.Subshell:
		return "subshell"
	case *shsyntax.FuncDecl:
		return "function_definition"
	case *shsyntax.CaseClause:
		return "case_statement"
	case *shsyntax.DeclClause:
		return "declaration_command"
	case *shsyntax.TestClause:
		return "test_command"
	case *shsyntax.ArithmCmd:
		return "arithmetic_command"
	case *shsyntax.LetClause:
		return "let_command"
	case *shsyntax.TimeClause:
		return "time_command"
	case *shsyntax.CoprocClause:
		return "coproc_command"
	default:
		return compoundStatementNodeType
	}
}
