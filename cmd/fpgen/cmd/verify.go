package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	chewxy "github.com/chewxy/sexp"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/fpgen/pkg/kicad/modfile"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/serializer"
	"github.com/OpenTraceLab/fpgen/pkg/kicad/sexp/kicadsexp"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file.kicad_mod>...",
	Short: "Check footprint files",
	Long: `Parses footprint files and checks that:
  - the file reads back as a footprint
  - the text is in canonical format (formatting the parsed tree reproduces it)
  - a second, independent s-expression parser sees the same elements
  - pads are in natural number order`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// report is the outcome of checking one file
type report struct {
	Problems []string
	Warnings []string
}

func (r *report) problem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

func runVerify(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read footprint: %w", err)
		}
		r := verify(data)
		for _, w := range r.Warnings {
			warnf("%s: %s", path, w)
		}
		if len(r.Problems) > 0 {
			failed++
			fmt.Printf("%s %s\n", styles.fail.Render("FAIL"), path)
			for _, p := range r.Problems {
				fmt.Printf("     %s\n", p)
			}
			continue
		}
		fmt.Printf("%s %s\n", styles.ok.Render("OK  "), path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed verification", failed, len(args))
	}
	return nil
}

// verify runs every check on the content of a footprint file
func verify(data []byte) report {
	var r report

	fp, err := modfile.Parse(bytes.NewReader(data))
	if err != nil {
		r.problem("%v", err)
		return r
	}
	logf("%s: %d pads, %d lines, %d arcs", fp.Name, len(fp.Pads), len(fp.Lines), len(fp.Arcs))

	trees, err := kicadsexp.Parse(bytes.NewReader(data))
	if err != nil {
		r.problem("%v", err)
		return r
	}
	root := trees[0]
	if got := kicadsexp.Format(root); got != string(data) {
		r.problem("not in canonical format, first difference at line %d", firstDiffLine(got, string(data)))
	}

	want := countSubLists(root)
	if got, err := countChewxy(data); err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("cross-check parser: %v", err))
	} else if got != want {
		r.problem("cross-check parser found %d elements, want %d", got, want)
	}

	for i := 1; i < len(fp.Pads); i++ {
		prev, cur := fp.Pads[i-1].Number, fp.Pads[i].Number
		if serializer.CompareNatural(prev, cur) > 0 {
			r.problem("pad %q is written after pad %q", cur, prev)
		}
	}
	return r
}

func countSubLists(s kicadsexp.Sexp) int {
	l, ok := s.(*kicadsexp.List)
	if !ok {
		return 0
	}
	n := 0
	for _, item := range l.Items() {
		if !item.IsLeaf() {
			n++
		}
	}
	return n
}

// countChewxy counts the sub-lists of the root expression as seen by
// chewxy/sexp
func countChewxy(data []byte) (n int, err error) {
	// The parser panics on some inputs it does not understand
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parser panic: %v", p)
		}
	}()

	exprs, err := chewxy.ParseString(string(data))
	if err != nil {
		return 0, err
	}
	if len(exprs) != 1 {
		return 0, fmt.Errorf("expected a single expression, found %d", len(exprs))
	}
	s := exprs[0]
	for i := 0; i < 1_000_000 && s != nil && !s.IsLeaf() && s.LeafCount() > 0; i++ {
		if head := s.Head(); head != nil && !head.IsLeaf() {
			n++
		}
		if s.LeafCount() <= 1 {
			break
		}
		s = s.Tail()
	}
	return n, nil
}

func firstDiffLine(a, b string) int {
	al, bl := strings.Split(a, "\n"), strings.Split(b, "\n")
	for i := 0; i < min(len(al), len(bl)); i++ {
		if al[i] != bl[i] {
			return i + 1
		}
	}
	return min(len(al), len(bl)) + 1
}
