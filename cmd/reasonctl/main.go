// Command reasonctl is a thin CLI over the ontology store, reasoner,
// query engine, profile validator, and provenance chain, mirroring
// cmd/synnergy/main.go's wiring style: construct config, construct
// subsystems, register subcommands. Out of scope per spec.md §1 except
// as the entrypoint that proves the wiring compiles and runs.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/provchain-labs/owl2reasoner/internal/ontology"
	"github.com/provchain-labs/owl2reasoner/internal/parser/common"
	"github.com/provchain-labs/owl2reasoner/internal/parser/functional"
	"github.com/provchain-labs/owl2reasoner/internal/parser/jsonld"
	"github.com/provchain-labs/owl2reasoner/internal/parser/manchester"
	"github.com/provchain-labs/owl2reasoner/internal/parser/rdfxml"
	"github.com/provchain-labs/owl2reasoner/internal/parser/turtle"
	"github.com/provchain-labs/owl2reasoner/internal/profile"
	"github.com/provchain-labs/owl2reasoner/internal/provenance"
	"github.com/provchain-labs/owl2reasoner/internal/query"
	"github.com/provchain-labs/owl2reasoner/internal/reasoner"
	pkgconfig "github.com/provchain-labs/owl2reasoner/pkg/config"
)

var log = logrus.WithField("component", "reasonctl")

func main() {
	cfg := pkgconfig.Default()

	rootCmd := &cobra.Command{Use: "reasonctl"}
	rootCmd.PersistentFlags().String("env", "", "configuration environment to merge over the default")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		env, _ := cmd.Flags().GetString("env")
		if loaded, err := pkgconfig.Load(env); err == nil {
			cfg = *loaded
		} else {
			log.WithError(err).Warn("falling back to built-in defaults")
		}
	}

	rootCmd.AddCommand(classifyCmd(&cfg))
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(queryCmd(&cfg))
	rootCmd.AddCommand(chainCmd())

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func classifyCmd(cfg *pkgconfig.Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "load an ontology and print its direct subclass hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := loadOntology(args[0], format)
			if err != nil {
				return err
			}
			rcfg := reasoner.DefaultConfig()
			rcfg.MaxDepth = cfg.Reasoner.MaxDepth
			rcfg.Timeout = cfg.ReasonerTimeout()
			rcfg.EnableParallel = cfg.Reasoner.EnableParallel
			rcfg.MaxConcurrency = cfg.Reasoner.MaxConcurrency
			rcfg.DecisionCacheMax = cfg.Reasoner.DecisionCacheMax

			r := reasoner.New(o, rcfg)
			hier, err := r.Classify(context.Background())
			if err != nil {
				return fmt.Errorf("classify: %w", err)
			}
			printHierarchy(hier)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "manchester", "manchester|functional|turtle|rdfxml|jsonld")
	return cmd
}

func validateCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "validate [file] [el|ql|rl]",
		Short: "check an ontology's structural conformance to an OWL2 profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := loadOntology(args[0], format)
			if err != nil {
				return err
			}
			p, err := parseProfile(args[1])
			if err != nil {
				return err
			}
			result, err := profile.Validate(o, p)
			if err != nil {
				return err
			}
			if result.Conforms {
				fmt.Printf("%s: conforms\n", result.Profile)
				return nil
			}
			fmt.Printf("%s: %d violation(s)\n", result.Profile, len(result.Violations))
			for _, v := range result.Violations {
				fmt.Printf("  %s\n", v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "manchester", "manchester|functional|turtle|rdfxml|jsonld")
	return cmd
}

func queryCmd(cfg *pkgconfig.Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "query [file] [select-statement]",
		Short: "run a SELECT query against an ontology",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := loadOntology(args[0], format)
			if err != nil {
				return err
			}

			qcfg := query.DefaultConfig()
			qcfg.EnableReasoning = cfg.Query.EnableReasoning
			qcfg.EnableCaching = cfg.Query.EnableCaching
			qcfg.EnableParallel = cfg.Query.EnableParallel
			qcfg.MaxResults = cfg.Query.MaxResults
			qcfg.CacheSize = cfg.Query.CacheSize

			var engine *query.Engine
			if qcfg.EnableReasoning {
				rcfg := reasoner.DefaultConfig()
				engine = query.WithConfig(o, qcfg, reasoner.New(o, rcfg))
			} else {
				engine = query.WithConfig(o, qcfg, nil)
			}

			prefixes := common.NewPrefixes("")
			pattern, vars, err := query.ParseSelect(args[1], prefixes)
			if err != nil {
				return fmt.Errorf("parse query: %w", err)
			}
			result, err := engine.Execute(pattern)
			if err != nil {
				return fmt.Errorf("execute query: %w", err)
			}
			if len(vars) == 1 && vars[0] == "*" {
				vars = result.Variables
			}
			printBindings(vars, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "manchester", "manchester|functional|turtle|rdfxml|jsonld")
	return cmd
}

func chainCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "chain"}
	status := &cobra.Command{
		Use:   "status [path]",
		Short: "report the block count and head hash of a chain file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := provenance.OpenStore(args[0])
			if err != nil {
				return fmt.Errorf("open chain file: %w", err)
			}
			n := store.Len()
			fmt.Printf("blocks: %d\n", n)
			if n > 0 {
				head, ok := store.BlockAt(uint64(n - 1))
				if !ok {
					return fmt.Errorf("chain file reports %d blocks but the last is missing", n)
				}
				hash, err := head.Hash()
				if err != nil {
					return err
				}
				fmt.Printf("head index: %d\n", head.Index)
				fmt.Printf("head hash: %x\n", hash)
			}
			return nil
		},
	}
	cmd.AddCommand(status)
	return cmd
}

func loadOntology(path, format string) (*ontology.Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	o := ontology.New()

	var loadErrs []error
	switch format {
	case "manchester":
		loadErrs = manchester.Load(o, string(data), "", common.BestEffort)
	case "functional":
		loadErrs = functional.Load(o, string(data), "", common.BestEffort)
	case "turtle":
		loadErrs = turtle.Load(o, string(data), "", common.BestEffort)
	case "rdfxml":
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, ferr
		}
		defer f.Close()
		loadErrs = rdfxml.Load(o, f, "")
	case "jsonld":
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, ferr
		}
		defer f.Close()
		loadErrs = jsonld.Load(o, f, "")
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	for _, e := range loadErrs {
		log.WithError(e).Warn("parse error")
	}
	return o, nil
}

func parseProfile(s string) (profile.Profile, error) {
	switch s {
	case "el", "EL":
		return profile.EL, nil
	case "ql", "QL":
		return profile.QL, nil
	case "rl", "RL":
		return profile.RL, nil
	default:
		return profile.Profile(-1), fmt.Errorf("unknown profile %q (want el, ql, or rl)", s)
	}
}

func printHierarchy(h *reasoner.Hierarchy) {
	supers := make([]string, 0, len(h.DirectSubclasses))
	for sup := range h.DirectSubclasses {
		supers = append(supers, sup)
	}
	sort.Strings(supers)
	for _, sup := range supers {
		subs := h.DirectSubclasses[sup]
		names := make([]string, len(subs))
		for i, s := range subs {
			names[i] = s.String()
		}
		sort.Strings(names)
		fmt.Printf("%s:\n", sup)
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
	}
}

func printBindings(vars []string, result *query.QueryResult) {
	fmt.Println(joinHeader(vars))
	for _, b := range result.Bindings {
		row := make([]string, len(vars))
		for i, v := range vars {
			if val, ok := b.Get(v); ok {
				row[i] = val.String()
			} else {
				row[i] = "-"
			}
		}
		fmt.Println(joinHeader(row))
	}
	fmt.Printf("(%d bindings in %dms, reasoning_used=%v)\n",
		result.Len(), result.Stats.TimeMS, result.Stats.ReasoningUsed)
}

func joinHeader(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += "\t"
		}
		out += f
	}
	return out
}
