/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/topomesh/remap/config"
	"github.com/topomesh/remap/geometry"
	"github.com/topomesh/remap/mesh"
	"github.com/topomesh/remap/remap"
)

// FieldsCmd represents the fields command
var FieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Compute conservative addressing for a case and remap a test field",
	Long: `Builds the source and target meshes described by the case file,
computes the overlap addressing and reports conservation quality.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		caseFile, err := cmd.Flags().GetString("caseFile")
		if err != nil {
			panic(err)
		}
		threads, _ := cmd.Flags().GetInt("threads")
		prof, _ := cmd.Flags().GetBool("profile")

		if prof {
			defer profile.Start(profile.CPUProfile).Stop()
		}

		rp := processCase(caseFile)
		if threads > 0 {
			rp.NThreads = threads
		}
		RunRemap(rp)
	},
}

func init() {
	rootCmd.AddCommand(FieldsCmd)
	FieldsCmd.Flags().StringP("caseFile", "F", "remapCase.yaml",
		"YAML case file describing the source and target meshes")
	FieldsCmd.Flags().IntP("threads", "t", 0, "override NThreads from the case file")
	FieldsCmd.Flags().Bool("profile", false, "write a CPU profile")
}

func processCase(caseFile string) (rp *config.RemapParameters) {
	data, err := os.ReadFile(caseFile)
	if err != nil {
		fmt.Printf("unable to read case file [%s]: %v\n", caseFile, err)
		os.Exit(1)
	}
	rp = &config.RemapParameters{}
	if err = rp.Parse(data); err != nil {
		fmt.Printf("unable to parse case file [%s]: %v\n", caseFile, err)
		os.Exit(1)
	}
	rp.Print()
	return
}

func boxMesh(spec config.BoxSpec) *mesh.Mesh {
	return mesh.NewBoxMesh(
		spec.NCells[0], spec.NCells[1], spec.NCells[2],
		geometry.Vec(spec.Min), geometry.Vec(spec.Max),
	)
}

// RunRemap drives one remap job from parsed case parameters.
func RunRemap(rp *config.RemapParameters) {
	src := boxMesh(rp.Source)
	tgt := boxMesh(rp.Target)

	start := time.Now()
	r, err := remap.New(src, tgt, remap.Options{
		NThreads:           rp.NThreads,
		MTol:               rp.MTol,
		ForceRecalculation: rp.ForceRecalculation,
		WriteAddressing:    rp.WriteAddressing,
		DecompSource:       rp.DecompSource,
		DecompTarget:       rp.DecompTarget,
		CaseDir:            ".",
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	rep := r.ConservationReport()
	fmt.Printf("%d cells addressed in %v\n", rep.NCells, elapsed)
	fmt.Printf("%8.3e\t\t= Worst relative volume defect (cell %d)\n",
		rep.WorstDefect, rep.WorstCell)
	fmt.Printf("%8.6f / %8.6f\t= Mapped / receiving volume\n",
		rep.MappedVol, rep.ReceivingVol)
	if rep.NFailed > 0 {
		fmt.Printf("[%d]\t\t\t= Cells on single-parent fallback\n", rep.NFailed)
	}

	// Map a linear test field both ways as a sanity check
	from := remap.NewVolField[float64]("T", src.NCells())
	for cI, c := range src.CellCentres() {
		from.Values[cI] = c[0] + 2*c[1] + 3*c[2]
	}
	to := remap.NewVolField[float64]("T", tgt.NCells())

	method := remap.ConservativeFirstOrder
	switch strings.ToUpper(rp.Method) {
	case "CONSERVATIVE":
		method = remap.Conservative
	case "INVERSE_DISTANCE":
		method = remap.InverseDistance
	}
	if err = r.InterpolateScalar(to, from, method); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("[%s]\t= Field %q mapped onto %d cells\n",
		method, to.Name, len(to.Values))
}
