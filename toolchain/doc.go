// Package toolchain holds the tools an agent may call and renders them for the model.
//
// # Overview
//
// A [Set] is responsible for:
//  1. Explaining to the model which tools exist and what arguments they take
//  2. Resolving a tool name from a parsed decision to the tool itself
//  3. Checking that parsed arguments have the keyed shape tools expect
//  4. Framing call results as the text injected back into the conversation
//
// # Catalog
//
// AvailableToolsPrompt renders the catalog as YAML, one block per tool in insertion
// order. Argument types are free-form labels ("string", "int", "list[str]"); each tool
// validates its own arguments against the JSON schema derived from them.
//
// # Result Framing
//
// A completed call is reported to the model as:
//
//	---
//	search(limit=3, q="cats") returned:
//	Cats are small carnivorous mammals.
//
// Arguments are sorted by key. String values are quoted; everything else is printed in its
// natural form, with integral JSON numbers printed without a fraction.
//
// # Example Usage
//
//	tools := toolchain.MustNew(search, calculator)
//	prompt := tools.AvailableToolsPrompt()
//
//	tool, err := tools.Lookup(call.ToolName)
//	if err != nil {
//	    return err // KindTool, wraps arkaine.ErrUnknownTool
//	}
//	args, err := toolchain.ToArguments(call.ToolName, call.Arguments)
//	if err != nil {
//	    return err // KindTool, wraps arkaine.ErrInvalidArguments
//	}
//	result, err := tool.Invoke(ctx, args)
//	message := toolchain.FormatResult(call.ToolName, args, result)
package toolchain
