// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ArchiveNotFoundId Id = iota + 1
	NoSectionsId
	ExtractionFailedId
	CommandFailedId
	BuildFailedId
	InputNotFoundId
	ConfigLoadFailedId
	InvalidRuntimeModeId
	ShellNotFoundId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // project documentation for this issue type
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue guide as terminal markdown. stylePath is a
// glamour style name ("dark", "light", "notty") or a path to a style file.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	archiveNotFoundIssue = &Issue{
		id: ArchiveNotFoundId,
		mdMsg: `
# Installer file not found!

ezn reads its archive from the executable it is running as, and that file
could not be opened.

## Things you can try:
- Run the installer through its full path:
~~~
$ ./install.exe
~~~

- Point ezn at an installer file explicitly:
~~~
$ ezn --archive ./install.exe -l
~~~`,
	}

	noSectionsIssue = &Issue{
		id: NoSectionsId,
		mdMsg: `
# Nothing to install!

This executable does not carry an archive, or the archive holds no files.
A plain ezn binary has nothing appended until you build an installer with it.

## Things you can try:
- Build an installer from some files:
~~~
$ ezn -o setup.exe -e "./setup.sh" setup.sh payload/
~~~

- Inspect what an installer carries:
~~~
$ ezn --archive setup.exe -m
~~~`,
	}

	extractionFailedIssue = &Issue{
		id: ExtractionFailedId,
		mdMsg: `
# Extraction failed!

The archive could not be read while extracting. The installer file may be
truncated or was modified after it was built.

## Things you can try:
- Download or copy the installer again
- Compare the listing with the expected contents:
~~~
$ ezn --archive install.exe -l
~~~`,
	}

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# The install command failed!

Files were extracted, but the command stored in the installer exited with a
non-zero status. Cleanup was skipped so the extracted files can be inspected.

## Things you can try:
- Re-run the command by hand from the extraction directory
- Show the stored command:
~~~
$ ezn --archive install.exe -m
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Could not build the installer!

## Common causes:
- The output directory is not writable
- An input file changed size while the installer was being written
- The output path names the running ezn executable

## Things you can try:
- Choose a different output path with ` + "`-o`" + `
- Make sure no other process is writing the input files`,
	}

	inputNotFoundIssue = &Issue{
		id: InputNotFoundId,
		mdMsg: `
# Input file not found!

Every path given on the command line must exist. Directories are packed
recursively.

## Things you can try:
- Check the spelling of each path
- Use paths relative to the current directory`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Compare it with the supported fields:
~~~cue
runtime: "native"
output:  "install.exe"
ui: {
	verbose:      false
	color_scheme: "auto"
}
~~~`,
	}

	invalidRuntimeModeIssue = &Issue{
		id: InvalidRuntimeModeId,
		mdMsg: `
# Invalid runtime!

## Valid runtimes:
- **native** runs the command with the host shell
- **virtual** runs the command with the built-in shell interpreter

## Things you can try:
~~~
$ ezn --runtime virtual
~~~`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# No shell found!

The native runtime runs the install command through the host shell and could
not find one.

## Things you can try:
- Make sure ` + "`sh`" + ` (or ` + "`cmd`" + ` on Windows) is on your PATH
- Use the built-in interpreter instead:
~~~
$ EZN_RUNTIME=virtual ./install.exe
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

## Common causes:
- The target directory is not writable
- Extracted files kept a read-only mode from a previous install

## Things you can try:
- Extract somewhere you own:
~~~
$ ./install.exe -C ~/tmp/install
~~~`,
	}

	issues = map[Id]*Issue{
		archiveNotFoundIssue.Id():    archiveNotFoundIssue,
		noSectionsIssue.Id():         noSectionsIssue,
		extractionFailedIssue.Id():   extractionFailedIssue,
		commandFailedIssue.Id():      commandFailedIssue,
		buildFailedIssue.Id():        buildFailedIssue,
		inputNotFoundIssue.Id():      inputNotFoundIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		invalidRuntimeModeIssue.Id(): invalidRuntimeModeIssue,
		shellNotFoundIssue.Id():      shellNotFoundIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
	}
)

// Values returns every registered issue, sorted by id.
func Values() []*Issue {
	ids := make([]Id, 0, len(issues))
	for id := range issues {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
