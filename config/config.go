package config

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// BoxSpec describes an analytic box mesh for a remap case. ghodss/yaml
// converts YAML to JSON before decoding, so the field tags are json tags
// and short keys like "N" are avoided (YAML 1.1 reads them as booleans).
type BoxSpec struct {
	NCells [3]int     `json:"NCells"`
	Min    [3]float64 `json:"Min"`
	Max    [3]float64 `json:"Max"`
}

// RemapParameters obtained from the YAML case file
type RemapParameters struct {
	Title              string  `json:"Title"`
	NThreads           int     `json:"NThreads"`
	MTol               float64 `json:"MTol"`
	Method             string  `json:"Method"`
	ForceRecalculation bool    `json:"ForceRecalculation"`
	WriteAddressing    bool    `json:"WriteAddressing"`
	DecompSource       bool    `json:"DecompSource"`
	DecompTarget       bool    `json:"DecompTarget"`
	Source             BoxSpec `json:"Source"`
	Target             BoxSpec `json:"Target"`
}

func (rp *RemapParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, rp)
}

func (rp *RemapParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("[%d]\t\t\t= NThreads\n", rp.NThreads)
	fmt.Printf("%8.2e\t\t= MTol\n", rp.MTol)
	fmt.Printf("[%s]\t= Method\n", rp.Method)
	fmt.Printf("%v x %v cells\t= Source / Target\n", rp.Source.NCells, rp.Target.NCells)
}
