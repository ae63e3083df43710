package config

import "strings"

// Artifact names a derived geometric artifact that can be exposed to an
// external renderer. Selections are validated here, at load time, instead
// of being matched as free-form strings at render time.
type Artifact int

const (
	ArtifactLabel Artifact = iota
	ArtifactObject
	ArtifactOrientation
	ArtifactProfile
	ArtifactAxis
	ArtifactBounds
	ArtifactCenter
	ArtifactFace
	ArtifactFarthest
	ArtifactHoles
	ArtifactToolpath
	ArtifactOrigin
	ArtifactPostLabel
	ArtifactJointLabel
)

var artifactNames = map[string]Artifact{
	"label":       ArtifactLabel,
	"object":      ArtifactObject,
	"orientation": ArtifactOrientation,
	"profile":     ArtifactProfile,
	"axis":        ArtifactAxis,
	"bounds":      ArtifactBounds,
	"center":      ArtifactCenter,
	"face":        ArtifactFace,
	"farthest":    ArtifactFarthest,
	"holes":       ArtifactHoles,
	"toolpath":    ArtifactToolpath,
	"origin":      ArtifactOrigin,
	"postLabel":   ArtifactPostLabel,
	"jointLabel":  ArtifactJointLabel,
}

func (a Artifact) String() string {
	for name, v := range artifactNames {
		if v == a {
			return name
		}
	}
	return "unknown"
}

// ArtifactSet is a validated set of artifact selections for one entity kind.
type ArtifactSet map[Artifact]bool

// Has reports whether the artifact is selected.
func (s ArtifactSet) Has(a Artifact) bool { return s[a] }

// Selection holds the validated artifact selections per entity kind.
// Layout variants use the same vocabulary as their base entity.
type Selection struct {
	Post         ArtifactSet
	Pocket       ArtifactSet
	Joint        ArtifactSet
	PostLayout   ArtifactSet
	PocketLayout ArtifactSet
}

// Allowed artifacts per entity kind, mirroring what the display layer can
// actually produce for each.
var (
	postArtifacts = []Artifact{
		ArtifactLabel, ArtifactObject, ArtifactOrientation,
		ArtifactProfile, ArtifactAxis,
	}
	pocketArtifacts = []Artifact{
		ArtifactPostLabel, ArtifactJointLabel, ArtifactOrientation,
		ArtifactBounds, ArtifactCenter, ArtifactFace, ArtifactFarthest,
		ArtifactHoles, ArtifactToolpath, ArtifactAxis,
	}
	jointArtifacts = []Artifact{
		ArtifactLabel, ArtifactAxis, ArtifactOrigin, ArtifactFace,
	}
)

func allowedSet(list []Artifact) ArtifactSet {
	s := make(ArtifactSet, len(list))
	for _, a := range list {
		s[a] = true
	}
	return s
}

// parseList parses a comma-delimited artifact list against an allowed set.
func parseList(section, option, raw string, allowed ArtifactSet) (ArtifactSet, error) {
	set := make(ArtifactSet)
	for _, item := range strings.Split(raw, ",") {
		name := strings.TrimSpace(item)
		if name == "" {
			continue
		}
		a, ok := artifactNames[name]
		if !ok {
			return nil, badOption(section, option, name, "unknown artifact")
		}
		if !allowed[a] {
			return nil, badOption(section, option, name, "artifact not available for this entity kind")
		}
		set[a] = true
	}
	return set, nil
}

func parseSelection(d Display) (Selection, error) {
	var sel Selection
	var err error

	post := allowedSet(postArtifacts)
	pocket := allowedSet(pocketArtifacts)
	joint := allowedSet(jointArtifacts)

	if sel.Post, err = parseList("display", "post", d.Post, post); err != nil {
		return Selection{}, err
	}
	if sel.Pocket, err = parseList("display", "pocket", d.Pocket, pocket); err != nil {
		return Selection{}, err
	}
	if sel.Joint, err = parseList("display", "joint", d.Joint, joint); err != nil {
		return Selection{}, err
	}
	if sel.PostLayout, err = parseList("display", "postLayout", d.PostLayout, post); err != nil {
		return Selection{}, err
	}
	if sel.PocketLayout, err = parseList("display", "pocketLayout", d.PocketLayout, pocket); err != nil {
		return Selection{}, err
	}
	return sel, nil
}
