package integration

import (
	"context"
	"testing"

	"github.com/zoobzio/refine"
	"github.com/zoobzio/refine/bson"
	"github.com/zoobzio/refine/json"
	"github.com/zoobzio/refine/msgpack"
	refinetest "github.com/zoobzio/refine/testing"
	"github.com/zoobzio/refine/xml"
	"github.com/zoobzio/refine/yaml"
)

var codecs = map[string]refine.Codec{
	"json":    json.New(),
	"xml":     xml.New(),
	"yaml":    yaml.New(),
	"msgpack": msgpack.New(),
	"bson":    bson.New(),
}

func TestPipeline_EncryptRoundTrip(t *testing.T) {
	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			pipe, err := refine.NewPipeline[refinetest.Secret](
				refine.WithRegistry(refinetest.TestRegistry(t)),
				refine.WithCodec(c),
			)
			if err != nil {
				t.Fatalf("NewPipeline error: %v", err)
			}

			original := &refinetest.Secret{ID: "1", Body: "launch codes"}

			data, err := pipe.Store(context.Background(), original, refine.TagEncrypt)
			if err != nil {
				t.Fatalf("Store error: %v", err)
			}
			if original.Body != "launch codes" {
				t.Errorf("Store modified original: %q", original.Body)
			}

			var sealed refinetest.Secret
			if err := c.Unmarshal(data, &sealed); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if sealed.Body == original.Body {
				t.Error("stored Body should be encrypted")
			}

			restored, err := pipe.Receive(context.Background(), data, refine.TagDecrypt)
			if err != nil {
				t.Fatalf("Receive error: %v", err)
			}
			if restored.Body != original.Body {
				t.Errorf("Body = %q, want %q", restored.Body, original.Body)
			}
		})
	}
}

func TestPipeline_ReceiveNormalizes(t *testing.T) {
	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			pipe, err := refine.NewPipeline[refinetest.Employee](
				refine.WithRegistry(refinetest.TestRegistry(t)),
				refine.WithCodec(c),
			)
			if err != nil {
				t.Fatalf("NewPipeline error: %v", err)
			}

			data, err := c.Marshal(refinetest.Employee{
				ID:      "1",
				Name:    "  ada   LOVELACE ",
				Email:   " Ada@Example.COM ",
				Aliases: []string{" countess "},
			})
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}

			got, err := pipe.Receive(context.Background(), data,
				refine.TagTrim, refine.TagNormalizeName, refine.TagLowercase, refine.TagCapitalize,
				refine.TagNoDigits, refine.TagRule,
			)
			if err != nil {
				t.Fatalf("Receive error: %v", err)
			}
			if got.Name != "Ada Lovelace" {
				t.Errorf("Name = %q", got.Name)
			}
			if got.Email != "ada@example.com" {
				t.Errorf("Email = %q", got.Email)
			}
			if len(got.Aliases) != 1 || got.Aliases[0] != "Countess" {
				t.Errorf("Aliases = %v", got.Aliases)
			}
		})
	}
}

func TestPipeline_ReceiveRejects(t *testing.T) {
	pipe, err := refine.NewPipeline[refinetest.Employee](
		refine.WithRegistry(refinetest.TestRegistry(t)),
		refine.WithCodec(json.New()),
	)
	if err != nil {
		t.Fatalf("NewPipeline error: %v", err)
	}

	data := []byte(`{"name":"R2D2","email":"droid"}`)
	_, err = pipe.Receive(context.Background(), data, refine.TagNoDigits, refine.TagRule)

	refinetest.RequireFailures(t, err,
		refine.Failure{Field: "Name", Tag: refine.TagNoDigits, Message: "contains digit"},
		refine.Failure{Field: "Email", Tag: refine.TagRule, Message: "must satisfy email"},
	)
	if status := refine.HTTPStatus(err); status != 422 {
		t.Errorf("HTTPStatus = %d, want 422", status)
	}
}

func TestPipeline_StoreProtects(t *testing.T) {
	c := json.New()
	pipe, err := refine.NewPipeline[refinetest.Employee](
		refine.WithRegistry(refinetest.TestRegistry(t)),
		refine.WithCodec(c),
	)
	if err != nil {
		t.Fatalf("NewPipeline error: %v", err)
	}

	original := &refinetest.Employee{ID: "1", Password: "hunter2", SSN: "123-45-6789"}
	data, err := pipe.Store(context.Background(), original, refine.TagHash, refine.TagMask)
	if err != nil {
		t.Fatalf("Store error: %v", err)
	}

	var stored refinetest.Employee
	if err := c.Unmarshal(data, &stored); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if stored.SSN != "***-**-6789" {
		t.Errorf("SSN = %q", stored.SSN)
	}
	if len(stored.Password) != 64 || stored.Password == original.Password {
		t.Errorf("Password = %q, want sha256 hex", stored.Password)
	}
	if original.Password != "hunter2" || original.SSN != "123-45-6789" {
		t.Error("Store modified original")
	}
}

func TestPipeline_MarkersFromEnv(t *testing.T) {
	t.Setenv("REFINE_IT_CREATE", "trim,normalize-name,lowercase")

	markers, err := refine.LoadMarkers("REFINE_IT_")
	if err != nil {
		t.Fatalf("LoadMarkers error: %v", err)
	}
	pipe, err := refine.NewPipeline[refinetest.Employee](
		refine.WithRegistry(refinetest.TestRegistry(t)),
		refine.WithMarkers(markers),
	)
	if err != nil {
		t.Fatalf("NewPipeline error: %v", err)
	}
	if err := pipe.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	got, err := pipe.Apply(context.Background(), "create", &refinetest.Employee{Name: " grace  hopper ", Email: "GRACE@NAVY.MIL"})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if got.Name != "Grace Hopper" || got.Email != "grace@navy.mil" {
		t.Errorf("Apply = %+v", got)
	}
}
