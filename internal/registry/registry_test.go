package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/templar/internal/models"
)

func TestAddPlatformIdempotent(t *testing.T) {
	r := New()
	r.AddPlatform("Tickets")
	r.AddTemplate("Tickets", "Anulación", "Hola {remitente}", []string{"remitente"})
	r.AddPlatform("Tickets")

	require.Equal(t, []string{"Tickets"}, r.Platforms())
	require.Equal(t, []string{"Anulación"}, r.MessageTypes("Tickets"))
}

func TestAddPlatformAcceptsAnyName(t *testing.T) {
	r := New()
	r.AddPlatform("")
	r.AddPlatform("tickets")
	r.AddPlatform("Tickets")

	require.Equal(t, []string{"", "tickets", "Tickets"}, r.Platforms())
}

func TestAddMessageTypeCascades(t *testing.T) {
	r := New()
	r.AddMessageType("Correos", "Seguimiento")

	require.True(t, r.HasPlatform("Correos"))
	require.True(t, r.HasMessageType("Correos", "Seguimiento"))

	record, ok := r.Template("Correos", "Seguimiento")
	require.True(t, ok)
	require.True(t, record.IsEmpty())
}

func TestAddMessageTypeKeepsExistingRecord(t *testing.T) {
	r := New()
	r.AddTemplate("Correos", "Seguimiento", "Hola {nombre}", []string{"nombre"})
	r.AddMessageType("Correos", "Seguimiento")

	record, ok := r.Template("Correos", "Seguimiento")
	require.True(t, ok)
	require.Equal(t, "Hola {nombre}", record.Template)
}

func TestAddTemplateReplaces(t *testing.T) {
	r := New()
	r.AddTemplate("Tickets", "Anulación", "A {x} {y}", []string{"x", "y"})
	r.AddTemplate("Tickets", "Anulación", "B {z}", []string{"z"})

	record, ok := r.Template("Tickets", "Anulación")
	require.True(t, ok)
	require.Equal(t, models.TemplateRecord{Template: "B {z}", Fields: []string{"z"}}, record)
	require.Equal(t, []string{"Anulación"}, r.MessageTypes("Tickets"))
}

func TestTemplateReturnsCopy(t *testing.T) {
	fields := []string{"a"}
	r := New()
	r.AddTemplate("p", "t", "{a}", fields)
	fields[0] = "mutated"

	record, _ := r.Template("p", "t")
	record.Fields[0] = "also mutated"

	again, _ := r.Template("p", "t")
	require.Equal(t, []string{"a"}, again.Fields)
}

func TestLookupMisses(t *testing.T) {
	r := New()
	r.AddPlatform("Tickets")

	require.Equal(t, []string{}, r.MessageTypes("Unknown"))

	_, ok := r.Template("Unknown", "x")
	require.False(t, ok)
	_, ok = r.Template("Tickets", "x")
	require.False(t, ok)
}

func TestRemove(t *testing.T) {
	r := New()
	r.AddTemplate("Tickets", "Anulación", "{a}", []string{"a"})
	r.AddTemplate("Tickets", "Actualización", "{b}", []string{"b"})
	r.AddPlatform("Correos")

	r.RemoveMessageType("Tickets", "Anulación")
	require.Equal(t, []string{"Actualización"}, r.MessageTypes("Tickets"))

	before := r.Serialize()
	r.RemoveMessageType("Tickets", "Missing")
	r.RemoveMessageType("Missing", "Anulación")
	r.RemovePlatform("Missing")
	require.Equal(t, before, r.Serialize())

	r.RemovePlatform("Tickets")
	require.Equal(t, []string{"Correos"}, r.Platforms())
	require.False(t, r.HasMessageType("Tickets", "Actualización"))
}

func TestRemoveThenReAddAppends(t *testing.T) {
	r := New()
	r.AddPlatform("a")
	r.AddPlatform("b")
	r.RemovePlatform("a")
	r.AddPlatform("a")

	require.Equal(t, []string{"b", "a"}, r.Platforms())
}

func TestSerializeRoundTrip(t *testing.T) {
	r := New()
	r.AddPlatform("Empty")
	r.AddMessageType("Correos", "Borrador")
	r.AddTemplate("Correos", "Seguimiento", "Hola {nombre}, ref {referencia}", []string{"nombre", "referencia"})
	r.AddTemplate("Tickets", "Anulación", "{a}{b}{a}", []string{"a", "b", "a"})

	restored := Deserialize(r.Serialize())

	require.Equal(t, r.Platforms(), restored.Platforms())
	for _, p := range r.Platforms() {
		require.Equal(t, r.MessageTypes(p), restored.MessageTypes(p))
		for _, mt := range r.MessageTypes(p) {
			want, _ := r.Template(p, mt)
			got, ok := restored.Template(p, mt)
			require.True(t, ok)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("%s/%s mismatch (-want +got):\n%s", p, mt, diff)
			}
		}
	}
}

func TestDeserializeKeepsStoredFields(t *testing.T) {
	doc := Document{{
		Name: "p",
		MessageTypes: []MessageTypeEntry{
			{Name: "t", Template: "{a} {b}", Fields: []string{"a"}},
		},
	}}

	record, ok := Deserialize(doc).Template("p", "t")
	require.True(t, ok)
	require.Equal(t, []string{"a"}, record.Fields)
}
