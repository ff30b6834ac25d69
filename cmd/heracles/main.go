// Command heracles is a CLI front-end for the heracles engine,
// dispatching one flag.FlagSet per verb and sharing a small set of
// global flags.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"

	"github.com/heracles-engine/heracles"
	"github.com/heracles-engine/heracles/internal/diffutil"
	"github.com/heracles-engine/heracles/internal/engcfg"
	"github.com/heracles-engine/heracles/internal/transform"
)

var version = "unknown"

var globalContext struct {
	root     string
	lensLib  string
	logLevel string
	gops     bool
	saveMode string
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	env := engcfg.FromEnviron()
	fs.StringVar(&globalContext.root, "root", env.Root, "filesystem `root` all paths are resolved under")
	fs.StringVar(&globalContext.lensLib, "lens-lib", env.LensLib, "colon-separated extra lens search `path`")
	var levels []string
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	fs.StringVar(&globalContext.logLevel, "verbosity", "warning", "sets the log `level`, among "+strings.Join(levels, ", "))
	fs.BoolVar(&globalContext.gops, "gops", false, "start a gops diagnostics agent")
	fs.StringVar(&globalContext.saveMode, "save-mode", "overwrite", "one of overwrite, backup, newfile, noop")
	return fs
}

func exitUsage(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	_, _ = fmt.Fprintf(os.Stderr, `Usage: %s COMMAND [ARGS]

Commands:

	get PATH: print the value at PATH
	set PATH VALUE: set the value at PATH
	setm BASE SUB VALUE: set VALUE on every node matching SUB under each node matching BASE
	match PATH: print every path matching PATH
	label PATH: print the label of the node matching PATH
	insert PATH LABEL [before|after]: insert a new sibling of PATH
	rm PATH: remove every node matching PATH
	mv SRC DST: move SRC to DST
	rename PATH LABEL: relabel every node matching PATH
	span PATH: print the source span of the node matching PATH
	defvar NAME EXPR: bind NAME to EXPR
	defnode NAME EXPR VALUE: bind NAME to EXPR, creating a node if empty
	load: (re)load all configured transforms
	save: write pending changes to disk
	print PATH: print each child of PATH with its value
	diff PATH: preview the unified diff Save would write for PATH's file
	version: show version information
`, os.Args[0])
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		exitUsage("expected a command")
	}
	cmd := os.Args[1]
	fs := newFlagSet(cmd)
	_ = fs.Parse(os.Args[2:])
	args := fs.Args()

	if globalContext.gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.WithError(err).Warn("could not start gops agent")
		}
	}

	level, err := log.ParseLevel(globalContext.logLevel)
	if err != nil {
		level = log.WarnLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.JSONFormatter{})

	if cmd == "version" {
		fmt.Println(version)
		return
	}

	h, err := heracles.New(globalContext.root, globalContext.lensLib, saveModeFlags())
	if err != nil {
		log.WithError(err).Fatal("could not initialize heracles")
	}
	defer h.Close()

	loadDemoTransform(h)

	if err := run(h, cmd, args); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func saveModeFlags() heracles.Flag {
	switch globalContext.saveMode {
	case "backup":
		return heracles.SaveBackup
	case "newfile":
		return heracles.SaveNewFile
	case "noop":
		return heracles.SaveNoop
	default:
		return 0
	}
}

// loadDemoTransform registers the one fixture transform the CLI
// understands out of the box, since there is no lens language to
// parse a user-authored transform file with (spec.md's Non-goal).
func loadDemoTransform(h *heracles.Heracles) {
	h.AddTransform("cli", "Simplevars.lines", []transform.Filter{
		{Glob: globalContext.root + "/*.conf"},
	})
}

func run(h *heracles.Heracles, cmd string, args []string) error {
	switch cmd {
	case "get":
		return cmdGet(h, args)
	case "set":
		return cmdSet(h, args)
	case "setm":
		return cmdSetm(h, args)
	case "match":
		return cmdMatch(h, args)
	case "label":
		return cmdLabel(h, args)
	case "insert":
		return cmdInsert(h, args)
	case "rm":
		return cmdRemove(h, args)
	case "mv":
		return cmdMove(h, args)
	case "rename":
		return cmdRename(h, args)
	case "span":
		return cmdSpan(h, args)
	case "defvar":
		return cmdDefvar(h, args)
	case "defnode":
		return cmdDefnode(h, args)
	case "load":
		return h.Load()
	case "save":
		return h.Save()
	case "print":
		return cmdPrint(h, args)
	case "diff":
		return cmdDiff(h, args)
	default:
		exitUsage(fmt.Sprintf("unknown command %q", cmd))
		return nil
	}
}

func requireArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func cmdGet(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 1, "get PATH"); err != nil {
		return err
	}
	v, err := h.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

func cmdSet(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 2, "set PATH VALUE"); err != nil {
		return err
	}
	return h.Set(args[0], args[1])
}

func cmdSetm(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 3, "setm BASE SUB VALUE"); err != nil {
		return err
	}
	n, err := h.SetMultiple(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func cmdMatch(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 1, "match PATH"); err != nil {
		return err
	}
	matches, err := h.Match(args[0])
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Println(m)
	}
	return nil
}

func cmdLabel(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 1, "label PATH"); err != nil {
		return err
	}
	v, err := h.Label(args[0])
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

func cmdInsert(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 2, "insert PATH LABEL [before|after]"); err != nil {
		return err
	}
	before := false
	if len(args) > 2 {
		before = args[2] == "before"
	}
	return h.Insert(args[0], args[1], before)
}

func cmdRemove(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 1, "rm PATH"); err != nil {
		return err
	}
	n, err := h.Remove(args[0])
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func cmdMove(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 2, "mv SRC DST"); err != nil {
		return err
	}
	return h.Move(args[0], args[1])
}

func cmdRename(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 2, "rename PATH LABEL"); err != nil {
		return err
	}
	n, err := h.Rename(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func cmdSpan(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 1, "span PATH"); err != nil {
		return err
	}
	span, err := h.Span(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s %d-%d (label) %d-%d (value)\n", span.Filename, span.LabelStart, span.LabelEnd, span.ValueStart, span.ValueEnd)
	return nil
}

func cmdDefvar(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 2, "defvar NAME EXPR"); err != nil {
		return err
	}
	n, err := h.DefineVariable(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func cmdDefnode(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 3, "defnode NAME EXPR VALUE"); err != nil {
		return err
	}
	n, created, err := h.DefineNode(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Println(n, created)
	return nil
}

func cmdPrint(h *heracles.Heracles, args []string) error {
	path := "/"
	if len(args) > 0 {
		path = args[0]
	}
	matches, err := h.Match(strings.TrimSuffix(path, "/") + "/*")
	if err != nil {
		return err
	}
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, m := range matches {
		v, _ := h.Get(m)
		fmt.Fprintf(w, "%s = %s\n", m, v)
	}
	return nil
}

func cmdDiff(h *heracles.Heracles, args []string) error {
	if err := requireArgs(args, 1, "diff PATH"); err != nil {
		return err
	}
	old, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	v, err := h.Get("/files" + args[0])
	if err != nil {
		v = ""
	}
	out, err := diffutil.Unified(old, []byte(v), heracles.DefaultContextLines)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
