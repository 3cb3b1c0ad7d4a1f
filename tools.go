package ode

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return FromJSON(val)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getOptString := func(key string) string {
		if v, ok := req.Params[key]; ok {
			if s, ok2 := v.(string); ok2 {
				return s
			}
		}
		return ""
	}
	getStrings := func(key string) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = s
		}
		return result, nil
	}
	getInt := func(key string) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return int(f), nil
	}
	getEquation := func(lhsKey, rhsKey string) (*Equation, error) {
		lhs, err := getExpr(lhsKey)
		if err != nil {
			return nil, err
		}
		rhs, err := getExpr(rhsKey)
		if err != nil {
			return nil, err
		}
		return Eq(lhs, rhs), nil
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: e.toJSON(), LaTeX: LaTeX(e), String: String(e)}
	}
	respondEquations := func(hint string, sols []*Equation) ToolResponse {
		objs := make([]interface{}, len(sols))
		strs := make([]string, len(sols))
		for i, s := range sols {
			objs[i] = map[string]interface{}{"lhs": s.LHS.toJSON(), "rhs": s.RHS.toJSON()}
			strs[i] = s.String()
		}
		return ToolResponse{
			Result: map[string]interface{}{"hint": hint, "solutions": objs},
			String: strings.Join(strs, "; "),
		}
	}

	switch req.Tool {
	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Simplify(e))

	case "deep_simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(DeepSimplify(e))

	case "canonicalize":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Canonicalize(e))

	case "to_latex":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: LaTeX(e), LaTeX: LaTeX(e), String: String(e)}

	case "free_symbols":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		set := FreeSymbols(e)
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Diff(e, v))

	case "diffn":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		n, err := getInt("n")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if n < 0 {
			return ToolResponse{Error: "param n must be non-negative"}
		}
		return respond(DiffN(e, v, n))

	case "integrate":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		r, ok := Integrate(e, v)
		if !ok {
			return ToolResponse{Error: fmt.Sprintf("cannot integrate %s with respect to %s", String(e), v)}
		}
		return respond(r)

	case "ode_order":
		eq, err := getEquation("lhs", "rhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		fn, err := getString("fn")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		order := Order(eq, fn, v)
		return ToolResponse{Result: order, String: fmt.Sprintf("%d", order)}

	case "classify_ode":
		eq, err := getEquation("lhs", "rhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		fn, err := getString("fn")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		hints, err := Classify(eq, fn, v)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: hints, String: strings.Join(hints, ", ")}

	case "dsolve":
		eq, err := getEquation("lhs", "rhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		fn, err := getString("fn")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res, err := Dsolve(eq, fn, v, getOptString("hint"))
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respondEquations(res.Hint, res.Solutions)

	case "checkodesol":
		eq, err := getEquation("lhs", "rhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		fn, err := getString("fn")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		sol, err := getEquation("sol_lhs", "sol_rhs")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		verdict, residual := CheckSolution(eq, fn, v, sol)
		result := map[string]interface{}{"verdict": verdict.String()}
		if residual != nil {
			result["residual"] = residual.toJSON()
		}
		return ToolResponse{Result: result, String: verdict.String()}

	case "homogeneous_order":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		vars, err := getStrings("vars")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		deg, ok := HomogeneousOrder(e, vars...)
		if !ok {
			return ToolResponse{Result: nil, String: "none"}
		}
		return ToolResponse{Result: deg.String(), String: deg.String()}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("simplify", "Simplify a symbolic expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("deep_simplify", "Apply multiple simplification passes including trig identities", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("canonicalize", "Expand and canonicalize expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("to_latex", "Convert to LaTeX", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("free_symbols", "Return free symbol names", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("diff", "First derivative d/dx", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("diffn", "nth derivative. Requires n (int)", []string{"expr", "var", "n"}, map[string]string{"expr": "object", "var": "string", "n": "integer"}),
		ts("integrate", "Symbolic integration (rule-based)", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("ode_order", "Differential order of an equation in fn(var)", []string{"lhs", "rhs", "fn", "var"}, map[string]string{"lhs": "object", "rhs": "object", "fn": "string", "var": "string"}),
		ts("classify_ode", "Ordered list of applicable solving strategies", []string{"lhs", "rhs", "fn", "var"}, map[string]string{"lhs": "object", "rhs": "object", "fn": "string", "var": "string"}),
		ts("dsolve", "Solve an ODE. Optional hint (default: best)", []string{"lhs", "rhs", "fn", "var"}, map[string]string{"lhs": "object", "rhs": "object", "fn": "string", "var": "string", "hint": "string"}),
		ts("checkodesol", "Verify a candidate solution against an ODE", []string{"lhs", "rhs", "fn", "var", "sol_lhs", "sol_rhs"}, map[string]string{"lhs": "object", "rhs": "object", "fn": "string", "var": "string", "sol_lhs": "object", "sol_rhs": "object"}),
		ts("homogeneous_order", "Uniform scaling degree in the listed variables, or none", []string{"expr", "vars"}, map[string]string{"expr": "object", "vars": "array"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
