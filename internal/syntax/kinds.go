package syntax

// Node kinds of the tree-sitter C# grammar that the analysis relies on.
const (
	KindCompilationUnit     = "compilation_unit"
	KindNamespace           = "namespace_declaration"
	KindFileScopedNamespace = "file_scoped_namespace_declaration"
	KindUsingDirective      = "using_directive"
	KindClass               = "class_declaration"
	KindStruct              = "struct_declaration"
	KindRecord              = "record_declaration"
	KindRecordStruct        = "record_struct_declaration"
	KindInterface           = "interface_declaration"
	KindBaseList            = "base_list"
	KindDeclarationList     = "declaration_list"
	KindMethod              = "method_declaration"
	KindConstructor         = "constructor_declaration"
	KindDestructor          = "destructor_declaration"
	KindOperator            = "operator_declaration"
	KindConversionOperator  = "conversion_operator_declaration"
	KindProperty            = "property_declaration"
	KindIndexer             = "indexer_declaration"
	KindEvent               = "event_declaration"
	KindAccessorList        = "accessor_list"
	KindAccessor            = "accessor_declaration"
	KindLocalFunction       = "local_function_statement"
	KindLambda              = "lambda_expression"
	KindAnonymousMethod     = "anonymous_method_expression"
	KindParameterList       = "parameter_list"
	KindParameter           = "parameter"
	KindBlock               = "block"
	KindArrowExpression     = "arrow_expression_clause"
	KindThrowStatement      = "throw_statement"
	KindThrowExpression     = "throw_expression"
	KindTryStatement        = "try_statement"
	KindCatchClause         = "catch_clause"
	KindCatchDeclaration    = "catch_declaration"
	KindCatchFilter         = "catch_filter_clause"
	KindFinallyClause       = "finally_clause"
	KindLocalDeclaration    = "local_declaration_statement"
	KindVariableDeclaration = "variable_declaration"
	KindVariableDeclarator  = "variable_declarator"
	KindObjectCreation      = "object_creation_expression"
	KindImplicitCreation    = "implicit_object_creation_expression"
	KindInvocation          = "invocation_expression"
	KindParenthesized       = "parenthesized_expression"
	KindCast                = "cast_expression"
	KindAs                  = "as_expression"
	KindConditional         = "conditional_expression"
	KindIdentifier          = "identifier"
	KindQualifiedName       = "qualified_name"
	KindGenericName         = "generic_name"
	KindAliasQualifiedName  = "alias_qualified_name"
	KindPredefinedType      = "predefined_type"
	KindNullableType        = "nullable_type"
	KindImplicitType        = "implicit_type"
	KindTypeArgumentList    = "type_argument_list"
	KindTypeParameterList   = "type_parameter_list"
	KindEmptyStatement      = "empty_statement"
	KindComment             = "comment"
	KindError               = "ERROR"
)

// TypeKinds are the node kinds that can spell a type reference.
var TypeKinds = []string{
	KindIdentifier,
	KindQualifiedName,
	KindGenericName,
	KindAliasQualifiedName,
	KindPredefinedType,
	KindNullableType,
	KindImplicitType,
}

// TypeDeclarationKinds are the node kinds that introduce a named type.
var TypeDeclarationKinds = []string{
	KindClass,
	KindStruct,
	KindRecord,
	KindRecordStruct,
	KindInterface,
}

// IsTrivia reports whether n carries no semantics (comments, stray separators).
func IsTrivia(n *Node) bool {
	if n == nil {
		return true
	}
	return n.Kind == KindComment || n.Kind == KindEmptyStatement
}

// Statements returns the statements of a block, skipping braces and comments.
// For any other node it returns the node itself as the single statement.
func Statements(n *Node) []*Node {
	if n == nil {
		return nil
	}
	if n.Kind != KindBlock {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.children {
		if !c.Named || IsTrivia(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
