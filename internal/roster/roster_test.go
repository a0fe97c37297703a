package roster

import "testing"

const sample = `
teams:
  North:
    - Alice
    - Bob
  South:
    - Carol
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if team, ok := r.TeamOf("alice"); !ok || team != "North" {
		t.Fatalf("TeamOf(alice) = %q, %v", team, ok)
	}
	if team, ok := r.TeamOf(" Carol "); !ok || team != "South" {
		t.Fatalf("TeamOf(Carol) = %q, %v", team, ok)
	}
	if _, ok := r.TeamOf("mallory"); ok {
		t.Fatalf("TeamOf(mallory): expected no team")
	}
	if got := len(r.Members("North")); got != 2 {
		t.Fatalf("Members(North) = %d, want 2", got)
	}
}

func TestParse_DuplicateMember(t *testing.T) {
	dup := `
teams:
  A: [Alice]
  B: [alice]
`
	if _, err := Parse([]byte(dup)); err == nil {
		t.Fatalf("expected error for member in two teams")
	}
}

func TestEmpty(t *testing.T) {
	r := Empty()
	if _, ok := r.TeamOf("anyone"); ok {
		t.Fatalf("empty roster should resolve nobody")
	}
	if len(r.Teams()) != 0 {
		t.Fatalf("empty roster should have no teams")
	}
}
