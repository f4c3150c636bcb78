// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PlanNotFoundId Id = iota + 1
	PlanParseErrorId
	MissingConfiguredEntryId
	UnsupportedCompilerId
	UnsupportedLinkModeId
	ToolchainNotFoundId
	ToolchainFailedId
	HeaderNotFoundId
	BindingGenerationFailedId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	name     string      // stable slug accepted by `hslink explain`
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Name() string {
	return i.name
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Title is the first heading of the message.
func (i *Issue) Title() string {
	for _, line := range strings.Split(string(i.mdMsg), "\n") {
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return i.name
}

// Render formats the message for the terminal. stylePath is a glamour style
// name or JSON style file; empty means "auto".
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.extLinks) > 0 {
		var sb strings.Builder
		sb.WriteString(md)
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		md = sb.String()
	}
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	planNotFoundIssue = &Issue{
		id:   PlanNotFoundId,
		name: "plan-not-found",
		mdMsg: `
# Install plan not found!

hslink reads the install plan that cabal writes to
` + "`<project>/dist-newstyle/cache/plan.json`" + `, and there is none yet.

## Things you can try:
- Build the project once so cabal writes the plan:
~~~
$ cabal build
~~~
- Pass the project directory explicitly:
~~~
$ hslink resolve path/to/project
~~~
- If cabal uses another build directory, set ` + "`dist_dir`" + ` in hslink.cue
  or ` + "`HSLINK_DIST_DIR`" + `.`,
		extLinks: []HttpLink{"https://cabal.readthedocs.io/en/stable/"},
	}

	planParseErrorIssue = &Issue{
		id:   PlanParseErrorId,
		name: "plan-parse-error",
		mdMsg: `
# Failed to parse the install plan!

The plan.json file is not valid JSON or lacks ` + "`compiler-id`" + ` or
` + "`install-plan`" + `.

## Things you can try:
- Regenerate the plan:
~~~
$ rm -rf dist-newstyle/cache && cabal build
~~~
- Check that the cabal-install version is recent enough to write plan.json.`,
		extLinks: []HttpLink{"https://cabal.readthedocs.io/en/stable/"},
	}

	missingConfiguredEntryIssue = &Issue{
		id:   MissingConfiguredEntryId,
		name: "missing-configured-entry",
		mdMsg: `
# No buildable project in the install plan!

The plan has no ` + "`configured`" + ` entry with a ` + "`dist-dir`" + `, so there is
no local package whose library hslink could link.

## Things you can try:
- Run hslink from the directory holding the cabal project.
- Build the library component so cabal records its build directory:
~~~
$ cabal build lib:<package>
~~~`,
	}

	unsupportedCompilerIssue = &Issue{
		id:   UnsupportedCompilerId,
		name: "unsupported-compiler",
		mdMsg: `
# Unsupported compiler!

Only GHC is supported. The plan names another compiler, or the configured
` + "`compiler`" + ` override does not start with ` + "`ghc`" + `.

## Things you can try:
- Configure the project with GHC:
~~~
$ cabal configure -w ghc-9.4.7
~~~
- Remove a non-GHC ` + "`compiler`" + ` setting from hslink.cue or ` + "`HSLINK_COMPILER`" + `.`,
		extLinks: []HttpLink{"https://www.haskell.org/ghcup/"},
	}

	unsupportedLinkModeIssue = &Issue{
		id:   UnsupportedLinkModeId,
		name: "unsupported-link-mode",
		mdMsg: `
# Unsupported link mode!

Resolution supports ` + "`dynamic`" + ` linking. Static linking needs the GHC
runtime's native support libraries and is not resolved automatically.

## Things you can try:
- Use dynamic linking:
~~~
$ hslink resolve --mode dynamic
~~~`,
	}

	toolchainNotFoundIssue = &Issue{
		id:   ToolchainNotFoundId,
		name: "toolchain-not-found",
		mdMsg: `
# Toolchain command not found!

hslink runs the compiler named by the plan (for example ` + "`ghc-9.4.7`" + `) and
the C compiler for preprocessing. One of them is not on PATH.

## Things you can try:
- Install the matching compiler version:
~~~
$ ghcup install ghc 9.4.7
~~~
- Point hslink at another executable with ` + "`compiler`" + ` or ` + "`bindgen.cc`" + `
  in hslink.cue.`,
		extLinks: []HttpLink{"https://www.haskell.org/ghcup/"},
	}

	toolchainFailedIssue = &Issue{
		id:   ToolchainFailedId,
		name: "toolchain-failed",
		mdMsg: `
# Toolchain command failed!

A compiler query or the C preprocessor exited with a failure status. Its
standard error is shown above.

## Things you can try:
- Run the command shown in the error by hand.
- Re-run with ` + "`--verbose`" + ` to see every command hslink runs.`,
	}

	headerNotFoundIssue = &Issue{
		id:   HeaderNotFoundId,
		name: "header-not-found",
		mdMsg: `
# Stub header not found!

GHC writes ` + "`<Module>_stub.h`" + ` next to the build output of a module with
` + "`foreign export`" + ` declarations.

## Things you can try:
- Build the project so the stub header exists:
~~~
$ cabal build
~~~
- Name the header explicitly:
~~~
$ hslink bindgen --header path/to/Module_stub.h
~~~`,
		extLinks: []HttpLink{"https://downloads.haskell.org/ghc/latest/docs/users_guide/ffi-chap.html"},
	}

	bindingGenerationFailedIssue = &Issue{
		id:   BindingGenerationFailedId,
		name: "binding-generation-failed",
		mdMsg: `
# Binding generation failed!

The stub header could not be preprocessed or its declarations could not be
turned into Go bindings.

## Things you can try:
- Check that every ` + "`#include`" + ` resolves; add directories with ` + "`-I`" + `.
- Inspect the declarations without generating Go code:
~~~
$ hslink bindgen --format json
~~~`,
		extLinks: []HttpLink{"https://pkg.go.dev/cmd/cgo"},
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		name: "config-load-failed",
		mdMsg: `
# Failed to load configuration!

hslink reads ` + "`--config`" + `, then ` + "`hslink.cue`" + ` in the project, then
` + "`config.cue`" + ` in the user config directory.

## Things you can try:
- Print the file in use and a complete valid example:
~~~
$ hslink config path
$ hslink config dump
~~~
- Check ` + "`HSLINK_*`" + ` variables in the environment and the project .env file.`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	permissionDeniedIssue = &Issue{
		id:   PermissionDeniedId,
		name: "permission-denied",
		mdMsg: `
# Permission denied!

A file could not be read or written.

## Things you can try:
- Check the permissions of the project's build directory and the output path.
- Write the bindings somewhere else with ` + "`-o`" + `.`,
	}

	issues = map[Id]*Issue{
		planNotFoundIssue.Id():            planNotFoundIssue,
		planParseErrorIssue.Id():          planParseErrorIssue,
		missingConfiguredEntryIssue.Id():  missingConfiguredEntryIssue,
		unsupportedCompilerIssue.Id():     unsupportedCompilerIssue,
		unsupportedLinkModeIssue.Id():     unsupportedLinkModeIssue,
		toolchainNotFoundIssue.Id():       toolchainNotFoundIssue,
		toolchainFailedIssue.Id():         toolchainFailedIssue,
		headerNotFoundIssue.Id():          headerNotFoundIssue,
		bindingGenerationFailedIssue.Id(): bindingGenerationFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by name.
func Lookup(name string) *Issue {
	for _, i := range issues {
		if i.name == name {
			return i
		}
	}
	return nil
}
