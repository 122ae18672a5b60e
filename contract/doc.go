// Package contract compiles OpenAPI 3.x documents into immutable,
// matchable API contracts.
//
// Compile consumes a fully decoded generic document tree (map[string]any)
// and produces a Document: every $ref resolved into a shared schema node
// graph, every path template compiled into an ordered match index, every
// parameter annotated with its effective serialization style, and every
// response selector normalized. The package reads no files and opens no
// connections; CompileYAML and CompileJSON exist as in-memory decode
// bridges for callers holding raw bytes.
//
// # Quick Start
//
// Compile a document and look up an operation:
//
//	doc, err := contract.CompileYAML(specBytes)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	op, params, err := doc.MatchOperation("GET", "/pets/42")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%s %s captured %v\n", op.Method, op.Template, params)
//
//	spec, err := op.ResponseFor(404)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("covered by selector %s\n", spec.Selector)
//
// # Reference Resolution
//
// References are resolved once, at compile time. Resolution is memoized by
// canonical source location: every use of #/components/schemas/Pet shares
// one *SchemaNode, and alias chains collapse onto the final target.
// Self-referential and mutually recursive schemas are legal; each node is
// registered before its subschemas resolve, so cycles link back to the
// in-progress node instead of recursing forever. Only document-local
// (#/...) references are supported, traversed per RFC 6901.
//
// Reference chains that never reach a concrete target, chains deeper than
// WithMaxRefDepth (default 100), and targets of the wrong shape are all
// compile-time *oaserrors.ResolutionError values carrying the document
// location that failed.
//
// # Path Matching
//
// Templates compile to anchored patterns where each {placeholder} captures
// exactly one path segment. Match preference is by specificity: literal
// characters outrank placeholders, so /users/me wins over /users/{id}
// regardless of declaration order. Templates that differ only in
// placeholder names are structurally identical and rejected at compile
// time.
//
// # Response Selectors
//
// Response table keys normalize to three selector forms: exact numeric
// codes ("200"), status-class wildcards ("4XX", uppercase), and "default".
// ResponseFor applies them in that precedence order.
//
// # Options
//
//	doc, err := contract.Compile(tree,
//		contract.WithLogger(contract.NewSlogAdapter(slogger)),
//		contract.WithMaxRefDepth(50),
//		contract.WithDefaultAdditionalProperties(false),
//	)
//
// WithDefaultAdditionalProperties sets the policy for object schemas that
// do not declare additionalProperties; the out-of-the-box default is
// allow, matching JSON Schema semantics.
//
// Compilation logs through the Logger interface at debug level; the
// default is NopLogger. NewSlogAdapter bridges log/slog.
package contract
