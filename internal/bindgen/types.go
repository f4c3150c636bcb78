// SPDX-License-Identifier: MPL-2.0

package bindgen

type (
	// Param is one function parameter. Name is empty for unnamed parameters.
	Param struct {
		Name string `json:"name,omitempty" toml:"name,omitempty"`
		Type string `json:"type" toml:"type"`
	}

	// Function is a C function prototype.
	Function struct {
		Name     string  `json:"name" toml:"name"`
		Result   string  `json:"result" toml:"result"`
		Params   []Param `json:"params" toml:"params"`
		Variadic bool    `json:"variadic,omitempty" toml:"variadic,omitempty"`
		File     string  `json:"file" toml:"file"`
		Line     int     `json:"line" toml:"line"`
	}

	// Typedef is a C type alias.
	Typedef struct {
		Name string `json:"name" toml:"name"`
		Type string `json:"type" toml:"type"`
		File string `json:"file" toml:"file"`
	}

	// DeclarationSet is everything extracted from one header.
	DeclarationSet struct {
		Header    string     `json:"header" toml:"header"`
		Functions []Function `json:"functions" toml:"function"`
		Typedefs  []Typedef  `json:"typedefs" toml:"typedef"`
	}
)

// Function returns the function called name.
func (s *DeclarationSet) Function(name string) (Function, bool) {
	for _, fn := range s.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}

// FunctionNames returns the function names in declaration order.
func (s *DeclarationSet) FunctionNames() []string {
	names := make([]string, len(s.Functions))
	for i, fn := range s.Functions {
		names[i] = fn.Name
	}
	return names
}
