// rigtool is a CLI utility for inspecting rigged models and recording
// procedural motions without a window.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rigscope/internal/config"
	"github.com/Faultbox/rigscope/internal/logger"
	"github.com/Faultbox/rigscope/internal/motion"
	"github.com/Faultbox/rigscope/internal/rig"
	"github.com/Faultbox/rigscope/internal/session"
	"github.com/Faultbox/rigscope/pkg/formats"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "inspect", "info":
		return cmdInspect(args, out)
	case "motions":
		return cmdMotions(args, out)
	case "morphs":
		return cmdMorphs(args, out)
	case "roles":
		return cmdRoles(args, out)
	case "clips":
		return cmdClips(args, out)
	case "play", "record":
		return cmdPlay(args, out)
	case "list", "ls":
		return cmdList(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `rigtool - rigged model inspector and motion recorder

Usage:
  rigtool <command> [options]

Commands:
  inspect [-yaml] <model>            Show meshes, skinning, bones, morphs and clips
  motions <model>                    List motions and whether the rig supports them
  morphs <model>                     List morph channels
  roles <model>                      Show the joint bound to each role and the names it accepts
  clips <model>                      List authored animation clips and what they animate
  play [-fps N] [-seed N] <model> <motion>
                                     Record a motion and print the frames as YAML
  list <dir> [pattern]               Find model files under a directory

Every model argument may be replaced by -demo to use the built-in mannequin.

Examples:
  rigtool inspect avatar.vrm
  rigtool motions -demo
  rigtool play -fps 10 avatar.glb wave > wave.yaml
  rigtool list ./assets "*.glb"`)
}

// modelFlags registers the flags shared by every model command.
type modelFlags struct {
	demo    *bool
	verbose *bool
}

func newModelFlags(fs *flag.FlagSet) modelFlags {
	return modelFlags{
		demo:    fs.Bool("demo", false, "Use the built-in mannequin"),
		verbose: fs.Bool("v", false, "Enable debug logging"),
	}
}

// open loads the model named by the first positional argument (or the demo)
// and returns the session and the remaining positional arguments.
func (m modelFlags) open(fs *flag.FlagSet, usage string, opts ...motion.Option) (*session.Session, []string, error) {
	if *m.verbose {
		if err := logger.Init("debug", ""); err != nil {
			return nil, nil, err
		}
	}
	args := fs.Args()
	s := session.New(config.Default().Model, logger.Named("rigtool"), opts...)
	if *m.demo {
		s.LoadDemo()
		return s, args, nil
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool "+usage)
		return nil, nil, errUsage
	}
	if err := s.Load(args[0]); err != nil {
		return nil, nil, err
	}
	return s, args[1:], nil
}

func cmdInspect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	asYAML := fs.Bool("yaml", false, "Print the report as YAML")
	mf := newModelFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	s, _, err := mf.open(fs, "inspect [-yaml] <model>")
	if err != nil {
		return err
	}
	m := s.Model()

	if *asYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(s.Report()); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(out, "Model:           %s\n", m.Path)
	fmt.Fprintf(out, "Format:          %s\n", m.Format)
	s.Report().Write(out)
	return nil
}

func cmdMotions(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("motions", flag.ContinueOnError)
	mf := newModelFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	s, _, err := mf.open(fs, "motions <model>")
	if err != nil {
		return err
	}

	avail := s.Player().Availability()
	count := 0
	for _, d := range motion.Catalog() {
		mark := "-"
		if avail[d.Key] {
			mark = "+"
			count++
		}
		fmt.Fprintf(out, "%s %-16s %-16s %4.1fs  %s\n", mark, d.Key, d.Label, d.Duration, d.Description)
	}
	fmt.Fprintf(os.Stderr, "\n(%d of %d motions available)\n", count, len(avail))
	return nil
}

func cmdMorphs(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("morphs", flag.ContinueOnError)
	mf := newModelFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	s, _, err := mf.open(fs, "morphs <model>")
	if err != nil {
		return err
	}

	chans := s.Rig().Channels()
	for _, ch := range chans {
		fmt.Fprintf(out, "%-24s %.3f\n", ch.Name(), s.Rig().Value(ch))
	}
	if len(chans) == 0 {
		fmt.Fprintln(os.Stderr, "No morph channels found")
	}
	return nil
}

func cmdRoles(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("roles", flag.ContinueOnError)
	mf := newModelFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	s, _, err := mf.open(fs, "roles <model>")
	if err != nil {
		return err
	}

	for _, role := range rig.Roles() {
		bound := "-"
		if j := s.Rig().Joint(role); j.Ok() {
			bound = j.Node().Name
		}
		fmt.Fprintf(out, "%-15s %-20s %s\n", role, bound, strings.Join(rig.Variants(role), ", "))
	}
	fmt.Fprintf(os.Stderr, "\n(%d of %d roles bound)\n", len(s.Rig().Tracked()), len(rig.Roles()))
	return nil
}

func cmdClips(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("clips", flag.ContinueOnError)
	mf := newModelFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	s, _, err := mf.open(fs, "clips <model>")
	if err != nil {
		return err
	}

	clips := s.Model().Clips
	for i := range clips {
		c := &clips[i]
		names := make([]string, 0, len(c.Tracks))
		for _, n := range c.Nodes() {
			names = append(names, n.Name)
		}
		fmt.Fprintf(out, "%-24s %6.2fs  %3d tracks  %s\n", c.Name, c.Duration, len(c.Tracks), strings.Join(names, ", "))
	}
	if len(clips) == 0 {
		fmt.Fprintln(os.Stderr, "No clips found")
	}
	return nil
}

func cmdPlay(args []string, out io.Writer) error {
	defaults := config.Default().Motion
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fps := fs.Int("fps", defaults.FPS, "Samples per second")
	seed := fs.Int64("seed", defaults.Seed, "Random seed for randomized motions")
	mf := newModelFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	usage := "play [-fps N] [-seed N] <model> <motion>"
	s, rest, err := mf.open(fs, usage, motion.WithSeed(*seed))
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool "+usage)
		return errUsage
	}

	tr, err := s.Record(motion.Key(rest[0]), *fps)
	if err != nil {
		return err
	}
	return tr.WriteYAML(out)
}

func cmdList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rigtool list <dir> [pattern]")
		return errUsage
	}

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	files, err := findModels(fs.Arg(0), pattern)
	if err != nil {
		return err
	}

	for i, f := range files {
		if *limit > 0 && i >= *limit {
			break
		}
		fmt.Fprintf(out, "%-6s %s\n", formats.DetectFormat(f), f)
	}
	fmt.Fprintf(os.Stderr, "\n(%d files found)\n", len(files))
	return nil
}

// findModels walks dir for files with a known model extension whose base
// name matches pattern (a glob, or a substring).
func findModels(dir, pattern string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || formats.DetectFormat(path) == formats.FormatUnknown {
			return nil
		}
		if pattern != "" {
			base := strings.ToLower(filepath.Base(path))
			matched, _ := filepath.Match(pattern, base)
			if !matched && !strings.Contains(base, pattern) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}
