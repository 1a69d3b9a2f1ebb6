package document

import (
	"strings"
	"testing"

	rerrors "mercator-hq/callisto/pkg/rules/errors"
)

func TestParse_YAMLScalarTypes(t *testing.T) {
	src := `
name: web-frontend
replicas: 3
weight: 0.75
enabled: true
owner: null
`
	doc, err := Parse([]byte(src), "doc.yaml")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if doc.Kind != KindMapping {
		t.Fatalf("root Kind = %q, want mapping", doc.Kind)
	}

	name := doc.Child("name")
	if name == nil || name.Scalar != ScalarString || name.Str != "web-frontend" {
		t.Errorf("name = %v, want string web-frontend", name)
	}
	replicas := doc.Child("replicas")
	if replicas == nil || replicas.Scalar != ScalarInt || replicas.Int != 3 {
		t.Errorf("replicas = %v, want int 3", replicas)
	}
	weight := doc.Child("weight")
	if weight == nil || weight.Scalar != ScalarFloat || weight.Float != 0.75 {
		t.Errorf("weight = %v, want float 0.75", weight)
	}
	enabled := doc.Child("enabled")
	if enabled == nil || enabled.Scalar != ScalarBool || !enabled.Bool {
		t.Errorf("enabled = %v, want bool true", enabled)
	}
	owner := doc.Child("owner")
	if owner == nil || !owner.IsNull() {
		t.Errorf("owner = %v, want null", owner)
	}
}

func TestParse_JSONInput(t *testing.T) {
	src := `{"spec": {"containers": [{"name": "app", "ports": [80, 443]}]}}`
	doc, err := Parse([]byte(src), "doc.json")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	containers := doc.Child("spec").Child("containers")
	if containers == nil || containers.Kind != KindSequence || containers.Len() != 1 {
		t.Fatalf("spec.containers = %v, want sequence of 1", containers)
	}
	ports := containers.Items()[0].Child("ports")
	if ports.Len() != 2 || ports.Items()[0].Int != 80 {
		t.Errorf("ports = %v, want [80, 443]", ports)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	doc, err := Parse(nil, "empty.yaml")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if !doc.IsNull() {
		t.Errorf("empty input parsed to %v, want null node", doc)
	}
	if doc.Location.File != "empty.yaml" {
		t.Errorf("Location.File = %q, want empty.yaml", doc.Location.File)
	}
}

func TestParse_DuplicateKeys(t *testing.T) {
	src := `
name: first
name: second
`
	_, err := Parse([]byte(src), "doc.yaml")
	if err == nil {
		t.Fatal("Parse() succeeded, want duplicate key error")
	}
	perr, ok := err.(*rerrors.ParseError)
	if !ok {
		t.Fatalf("error type = %T, want *errors.ParseError", err)
	}
	if !strings.Contains(perr.Message, `duplicate mapping key "name"`) {
		t.Errorf("Message = %q, want duplicate key diagnostic", perr.Message)
	}
	if perr.Location.Line != 3 {
		t.Errorf("Location.Line = %d, want 3", perr.Location.Line)
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	src := "spec: [unclosed\n"
	_, err := Parse([]byte(src), "doc.yaml")
	if err == nil {
		t.Fatal("Parse() succeeded, want syntax error")
	}
	if _, ok := err.(*rerrors.ParseError); !ok {
		t.Errorf("error type = %T, want *errors.ParseError", err)
	}
}

func TestParse_Anchors(t *testing.T) {
	src := `
defaults: &defaults
  retries: 3
service:
  <<: *defaults
primary: *defaults
`
	doc, err := Parse([]byte(src), "doc.yaml")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	primary := doc.Child("primary")
	if primary == nil || primary.Kind != KindMapping {
		t.Fatalf("primary = %v, want mapping resolved from alias", primary)
	}
	if got := primary.Child("retries"); got == nil || got.Int != 3 {
		t.Errorf("primary.retries = %v, want 3", got)
	}
}

func TestParse_HugeIntegerDegradesToFloat(t *testing.T) {
	src := `big: 99999999999999999999999999`
	doc, err := Parse([]byte(src), "doc.yaml")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	big := doc.Child("big")
	if big == nil || big.Scalar != ScalarFloat {
		t.Errorf("big = %v, want float scalar", big)
	}
}

func TestNode_Equal(t *testing.T) {
	a := NewMapping().
		Set("name", NewString("app")).
		Set("ports", NewSequence(NewInt(80), NewInt(443)))
	b := NewMapping().
		Set("name", NewString("app")).
		Set("ports", NewSequence(NewInt(80), NewInt(443)))
	if !a.Equal(b) {
		t.Error("identical trees reported unequal")
	}

	c := NewMapping().
		Set("ports", NewSequence(NewInt(80), NewInt(443))).
		Set("name", NewString("app"))
	if a.Equal(c) {
		t.Error("key order should be significant")
	}
}
