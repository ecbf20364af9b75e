package config

// State describes one Northeast-region state as the government APIs
// identify it.
type State struct {
	UF       string
	Name     string
	IBGECode string
}

// NortheastStates is the fixed nine-state table every extractor and
// the normalizer share. Iteration order is always via StateCodes so
// request order and sort order stay deterministic.
var NortheastStates = map[string]State{
	"AL": {UF: "AL", Name: "Alagoas", IBGECode: "27"},
	"BA": {UF: "BA", Name: "Bahia", IBGECode: "29"},
	"CE": {UF: "CE", Name: "Ceará", IBGECode: "23"},
	"MA": {UF: "MA", Name: "Maranhão", IBGECode: "21"},
	"PB": {UF: "PB", Name: "Paraíba", IBGECode: "25"},
	"PE": {UF: "PE", Name: "Pernambuco", IBGECode: "26"},
	"PI": {UF: "PI", Name: "Piauí", IBGECode: "22"},
	"RN": {UF: "RN", Name: "Rio Grande do Norte", IBGECode: "24"},
	"SE": {UF: "SE", Name: "Sergipe", IBGECode: "28"},
}

// StateCodes lists the nine UF codes in ascending order.
var StateCodes = []string{"AL", "BA", "CE", "MA", "PB", "PE", "PI", "RN", "SE"}

// StateName resolves a UF code to the human-readable state name.
// Unknown codes return an empty name; upstream data carrying a code
// outside the Northeast table is kept with a null name rather than
// rejected.
func StateName(uf string) string {
	if s, ok := NortheastStates[uf]; ok {
		return s.Name
	}
	return ""
}
