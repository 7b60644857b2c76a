package index

import (
	"bytes"
	"html/template"
	"path"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/temirov/gamerelease/internal/entrypoint"
	"github.com/temirov/gamerelease/internal/registry"
	"github.com/temirov/gamerelease/internal/storage"
)

const (
	// DefaultPlaceholder marks where the application list is substituted in the template.
	DefaultPlaceholder = "<!-- GAME_LIST_PLACEHOLDER -->"
	// DefaultLinkPrefix is the site-relative directory holding the storage root.
	DefaultLinkPrefix = "games"

	emptyListMarkupConstant              = "<!-- No games found -->"
	applicationWordSeparatorConstant     = "-"
	displayWordSeparatorConstant         = " "
	lineSeparatorConstant                = "\n"
	itemTemplateNameConstant             = "application-item"
	noApplicationsLogMessageConstant     = "no applications with valid releases; rendering empty list"
	missingEntryPointLogMessageConstant  = "skipping application: latest release has no entry point"
	placeholderMissingLogMessageConstant = "template placeholder not found; output left unchanged"
	itemRenderFailedLogMessageConstant   = "skipping application: list item could not be rendered"
	logFieldApplicationConstant          = "application"
	logFieldVersionConstant              = "version"
	logFieldPlaceholderConstant          = "placeholder"
)

const applicationItemMarkupConstant = `<li class="game-item">
    <a href="{{.PrimaryLink}}" class="game-link">{{.DisplayName}}</a>
    <div class="version-dropdown-container">
        <button class="versions-button" data-target="dropdown-{{.Name}}">Versions</button>
        <div id="dropdown-{{.Name}}" class="versions-dropdown-content">
{{- range .Versions}}
            {{if .Link}}<a href="{{.Link}}" target="_blank">{{.Label}}</a>{{else}}<span class="disabled-version">{{.Label}} (No entry)</span>{{end}}
{{- end}}
        </div>
    </div>
</li>`

var applicationItemTemplate = template.Must(template.New(itemTemplateNameConstant).Parse(applicationItemMarkupConstant))

// RendererConfiguration controls link construction and placeholder substitution.
type RendererConfiguration struct {
	Layout      storage.Layout
	LinkPrefix  string
	Placeholder string
}

// Rendering is the outcome of a single Render call.
type Rendering struct {
	Text                 string
	RenderedApplications []string
	SkippedApplications  []string
	PlaceholderFound     bool
}

type versionLink struct {
	Label string
	Link  string
}

type applicationItem struct {
	Name        string
	DisplayName string
	PrimaryLink string
	Versions    []versionLink
}

// Renderer turns registry entries into the navigation markup.
type Renderer struct {
	configuration RendererConfiguration
	logger        *zap.Logger
	resolver      *entrypoint.Resolver
}

// NewRenderer constructs a Renderer. Empty link prefix and placeholder fall back to
// the defaults; a link prefix of "." links relative to the site root.
func NewRenderer(configuration RendererConfiguration, logger *zap.Logger, fileSystem entrypoint.ExistenceChecker) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strings.TrimSpace(configuration.Placeholder)) == 0 {
		configuration.Placeholder = DefaultPlaceholder
	}
	configuration.LinkPrefix = strings.Trim(strings.TrimSpace(configuration.LinkPrefix), "/")
	if len(configuration.LinkPrefix) == 0 {
		configuration.LinkPrefix = DefaultLinkPrefix
	}
	return &Renderer{configuration: configuration, logger: logger, resolver: entrypoint.NewResolver(fileSystem)}
}

// Render substitutes the list items for the first occurrence of the
// placeholder in templateText. Applications without versions, or whose latest
// release has no entry point, are left out. When the placeholder is absent
// the template is returned unchanged.
func (renderer *Renderer) Render(templateText string, entries []registry.Entry) Rendering {
	rendering := Rendering{}
	renderedItems := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.LatestVersion == nil || len(entry.AllVersions) == 0 {
			continue
		}

		item, buildable := renderer.buildItem(entry)
		if !buildable {
			renderer.logger.Warn(missingEntryPointLogMessageConstant, zap.String(logFieldApplicationConstant, entry.Name), zap.String(logFieldVersionConstant, entry.LatestVersion.Text()))
			rendering.SkippedApplications = append(rendering.SkippedApplications, entry.Name)
			continue
		}

		var itemBuffer bytes.Buffer
		if executeError := applicationItemTemplate.Execute(&itemBuffer, item); executeError != nil {
			renderer.logger.Warn(itemRenderFailedLogMessageConstant, zap.String(logFieldApplicationConstant, entry.Name), zap.Error(executeError))
			rendering.SkippedApplications = append(rendering.SkippedApplications, entry.Name)
			continue
		}

		renderedItems = append(renderedItems, itemBuffer.String())
		rendering.RenderedApplications = append(rendering.RenderedApplications, entry.Name)
	}

	listMarkup := strings.Join(renderedItems, lineSeparatorConstant)
	if len(renderedItems) == 0 {
		renderer.logger.Warn(noApplicationsLogMessageConstant)
		listMarkup = emptyListMarkupConstant
	}

	placeholder := renderer.configuration.Placeholder
	placeholderIndex := strings.Index(templateText, placeholder)
	if placeholderIndex < 0 {
		renderer.logger.Warn(placeholderMissingLogMessageConstant, zap.String(logFieldPlaceholderConstant, placeholder))
		rendering.Text = templateText
		return rendering
	}

	indentation := lineIndentation(templateText, placeholderIndex)
	rendering.PlaceholderFound = true
	rendering.Text = templateText[:placeholderIndex] + indentFollowingLines(listMarkup, indentation) + templateText[placeholderIndex+len(placeholder):]
	return rendering
}

func (renderer *Renderer) buildItem(entry registry.Entry) (applicationItem, bool) {
	layout := renderer.configuration.Layout
	latestEntryPoint, found := renderer.resolver.Resolve(layout.ReleasePath(entry.Name, entry.LatestVersion.Text()), entry.Name)
	if !found {
		return applicationItem{}, false
	}

	item := applicationItem{
		Name:        entry.Name,
		DisplayName: FormatDisplayName(entry.Name),
		PrimaryLink: renderer.releaseLink(entry.Name, entry.LatestVersion.Text(), latestEntryPoint),
		Versions:    make([]versionLink, 0, len(entry.AllVersions)),
	}

	for _, version := range entry.AllVersions {
		link := versionLink{Label: version.Text()}
		if versionEntryPoint, versionFound := renderer.resolver.Resolve(layout.ReleasePath(entry.Name, version.Text()), entry.Name); versionFound {
			link.Link = renderer.releaseLink(entry.Name, version.Text(), versionEntryPoint)
		}
		item.Versions = append(item.Versions, link)
	}

	return item, true
}

func (renderer *Renderer) releaseLink(applicationName string, versionText string, entryPoint string) string {
	return path.Join(renderer.configuration.LinkPrefix, applicationName, renderer.configuration.Layout.ReleasesDirectoryName, versionText, entryPoint)
}

// FormatDisplayName converts a directory name such as "space-invaders" into "Space Invaders".
// Only the first rune of each word is upper-cased; the rest is lower-cased, so "2d-racer" becomes "2d Racer".
func FormatDisplayName(applicationName string) string {
	words := strings.Split(applicationName, applicationWordSeparatorConstant)
	titleCaser := cases.Title(language.Und)
	lowerCaser := cases.Lower(language.Und)
	for wordIndex, word := range words {
		if len(word) == 0 {
			continue
		}
		_, firstRuneSize := utf8.DecodeRuneInString(word)
		words[wordIndex] = titleCaser.String(word[:firstRuneSize]) + lowerCaser.String(word[firstRuneSize:])
	}
	return strings.Join(words, displayWordSeparatorConstant)
}

// lineIndentation returns the whitespace between the start of the line containing offset and offset.
func lineIndentation(text string, offset int) string {
	lineStart := strings.LastIndex(text[:offset], lineSeparatorConstant) + 1
	prefix := text[lineStart:offset]
	if len(strings.TrimLeft(prefix, " \t")) != 0 {
		return ""
	}
	return prefix
}

func indentFollowingLines(text string, indentation string) string {
	if len(indentation) == 0 {
		return text
	}
	return strings.ReplaceAll(text, lineSeparatorConstant, lineSeparatorConstant+indentation)
}
