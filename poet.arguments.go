package poet

import "sort"

// BindArguments checks raw request arguments against a document's argument
// schema and binds each one as {input: raw}. Missing required arguments
// fail. Undeclared arguments are bound too unless strict is set, in which
// case they fail.
func BindArguments(schema map[string]Argument, raw map[string]string, strict bool) (Value, error) {
	var missing []string
	for name, arg := range schema {
		if !arg.Required {
			continue
		}
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return NilValue(), NewArgumentMissingError(missing)
	}

	if strict {
		var unknown []string
		for name := range raw {
			if _, ok := schema[name]; !ok {
				unknown = append(unknown, name)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return NilValue(), NewUnknownArgumentError(unknown)
		}
	}

	bound := NewMap()
	for _, name := range sortedKeys(raw) {
		bound.Set(name, MapValue(NewMap().Set(ArgumentInputKey, StringValue(raw[name]))))
	}
	return MapValue(bound), nil
}
