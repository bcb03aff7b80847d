package steps

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/goccy/go-json"
)

const (
	MaxSkills     = 5
	MaxImageBytes = 5 << 20

	// ImageKeyPrefix starts every object-storage key the server hands out.
	ImageKeyPrefix = "users/"
)

var (
	DescribesYouOptions   = []string{"student", "professional", "entrepreneur", "freelancer"}
	LocationOptions       = []string{"india", "usa", "uk", "canada", "australia"}
	HowDoYouKnowUsOptions = []string{"social-media", "friend", "search", "advertisement"}
	MainGoalOptions       = []string{
		"Build my Skill Repository",
		"Get a Good Job",
		"Upskill for Current Role",
		"Explore New Skills",
		"Make Learning a Habit!",
		"Others",
	}
	JobSeekingOptions = []string{"yes", "no"}
)

// Patch is a partial update for one step. Nil fields were not sent.
type Patch interface {
	Step() Number
	validate() error
}

type ProfilePatch struct {
	YourName       *string `json:"yourName,omitempty"`
	YourUsername   *string `json:"yourUsername,omitempty"`
	DescribesYou   *string `json:"describesYou,omitempty"`
	Location       *string `json:"location,omitempty"`
	HowDoYouKnowUs *string `json:"howDoYouKnowUs,omitempty"`
}

func (ProfilePatch) Step() Number { return Profile }

func (p ProfilePatch) validate() error {
	if err := oneOf("describesYou", p.DescribesYou, DescribesYouOptions); err != nil {
		return err
	}
	if err := oneOf("location", p.Location, LocationOptions); err != nil {
		return err
	}
	return oneOf("howDoYouKnowUs", p.HowDoYouKnowUs, HowDoYouKnowUsOptions)
}

type GoalPatch struct {
	MainGoal *string `json:"mainGoal,omitempty"`
}

func (GoalPatch) Step() Number { return Goal }

func (p GoalPatch) validate() error {
	return oneOf("mainGoal", p.MainGoal, MainGoalOptions)
}

// IntroPatch has no fields; step 3 is informational.
type IntroPatch struct{}

func (IntroPatch) Step() Number { return Intro }

func (IntroPatch) validate() error { return nil }

type InterestsPatch struct {
	SelectedSkills *[]string `json:"selectedSkills,omitempty"`
	SkillSearch    *string   `json:"skillSearch,omitempty"`
}

func (InterestsPatch) Step() Number { return Interests }

func (p InterestsPatch) validate() error {
	if p.SelectedSkills == nil {
		return nil
	}
	skills := *p.SelectedSkills
	if len(skills) > MaxSkills {
		return common.NewValidationError("selectedSkills", "at most %d skills allowed, got %d", MaxSkills, len(skills))
	}
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if strings.TrimSpace(s) == "" {
			return common.NewValidationError("selectedSkills", "skill must not be empty")
		}
		if _, dup := seen[s]; dup {
			return common.NewValidationError("selectedSkills", "duplicate skill %q", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

type CareerPatch struct {
	JobSeeking   *string `json:"jobSeeking,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

func (CareerPatch) Step() Number { return Career }

func (p CareerPatch) validate() error {
	if err := oneOf("jobSeeking", p.JobSeeking, JobSeekingOptions); err != nil {
		return err
	}
	if p.ProfileImage == nil || *p.ProfileImage == "" || IsObjectKey(*p.ProfileImage) {
		return nil
	}
	return checkDataURL(*p.ProfileImage)
}

// New returns an empty patch for step n, or nil when n is out of range.
func New(n Number) Patch {
	switch n {
	case Profile:
		return &ProfilePatch{}
	case Goal:
		return &GoalPatch{}
	case Intro:
		return &IntroPatch{}
	case Interests:
		return &InterestsPatch{}
	case Career:
		return &CareerPatch{}
	}
	return nil
}

// Decode validates raw against the schema of step n. raw must be a JSON
// object; unknown fields, wrong types and bad enum values are ValidationErrors.
func Decode(n Number, raw []byte) (Patch, error) {
	if err := Check(n); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, common.NewValidationError("data", "must be an object")
	}

	p := New(n)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, common.NewValidationError("data", "%v", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeMap is Decode for an already parsed object.
func DecodeMap(n Number, m map[string]any) (Patch, error) {
	if m == nil {
		m = map[string]any{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, common.NewValidationError("data", "%v", err)
	}
	return Decode(n, raw)
}

// Encode returns the canonical JSON of the fields set in p.
func Encode(p Patch) ([]byte, error) {
	return json.Marshal(p)
}

// AsMap returns the fields set in p as a generic object, the shape the
// stores persist.
func AsMap(p Patch) (map[string]any, error) {
	b, err := Encode(p)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsObjectKey reports whether s looks like a key issued by the image service
// rather than an inline data URL.
func IsObjectKey(s string) bool {
	return strings.HasPrefix(s, ImageKeyPrefix)
}

func oneOf(field string, v *string, options []string) error {
	if v == nil || *v == "" {
		return nil
	}
	if !slices.Contains(options, *v) {
		return common.NewValidationError(field, "must be one of %s", strings.Join(options, ", "))
	}
	return nil
}

func checkDataURL(s string) error {
	rest, ok := strings.CutPrefix(s, "data:image/")
	if !ok {
		return common.NewValidationError("profileImage", "must be an image data URL or an uploaded image key")
	}
	_, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return common.NewValidationError("profileImage", "must be base64 encoded")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+2 {
		return common.NewValidationError("profileImage", "image larger than %d bytes", MaxImageBytes)
	}
	img, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return common.NewValidationError("profileImage", "invalid base64: %v", err)
	}
	if len(img) > MaxImageBytes {
		return common.NewValidationError("profileImage", "image larger than %d bytes", MaxImageBytes)
	}
	return nil
}

// DataURL builds an inline image value accepted by CareerPatch.
func DataURL(mime string, img []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img))
}
