package grt

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/yourorg/nextride/internal/models"
)

// Selectors concentra todo lo que depende del markup de NextRide.
// Si el sitio cambia sus clases, solo se toca aquí.
type Selectors struct {
	Row              string // Contenedor de cada viaje
	Route            string // Código de ruta
	RouteName        string // Nombre de la ruta
	Departure        string // Minutos u hora de salida
	DestinationIndex int    // Posición del div descendiente con el destino
	RealTimeClass    string // Clase del contenedor para viajes estimados
}

// DefaultSelectors corresponde al markup actual de nextride.grt.ca
var DefaultSelectors = Selectors{
	Row:              "div.trip",
	Route:            `div[aria-label="Route"]`,
	RouteName:        "div.font-semibold",
	Departure:        "div.minutes",
	DestinationIndex: 1,
	RealTimeClass:    "estimated",
}

// Diagnostic describe una fila descartada
type Diagnostic struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Extraction es el resultado de extraer un documento
type Extraction struct {
	Trips   []models.Trip
	Dropped []Diagnostic
}

// Extractor convierte contenido de NextRide en viajes válidos
type Extractor struct {
	sel      Selectors
	validate *validator.Validate
}

// NewExtractor crea un extractor con los selectores dados
func NewExtractor(sel Selectors) *Extractor {
	v := validator.New()
	// Reportar campos con su nombre JSON (route_name en vez de RouteName)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Extractor{sel: sel, validate: v}
}

// Extract interpreta el contenido según su tipo. Las filas incompletas se descartan
// sin abortar; solo un documento ilegible produce error.
func (e *Extractor) Extract(content *Content) (*Extraction, error) {
	if content == nil {
		return nil, ExtractionFailure(errors.New("no content"), "nothing to extract")
	}
	if content.Type == ContentJSON {
		return e.extractJSON(content.Body)
	}
	return e.extractHTML(content.Body)
}

func (e *Extractor) extractHTML(body []byte) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, ExtractionFailure(err, "cannot parse stop page")
	}

	out := &Extraction{Trips: make([]models.Trip, 0)}
	doc.Find(e.sel.Row).Each(func(i int, row *goquery.Selection) {
		trip := models.Trip{
			Route:             textOf(row.Find(e.sel.Route)),
			RouteName:         textOf(row.Find(e.sel.RouteName)),
			DestinationDetail: textOf(row.Find("div").Eq(e.sel.DestinationIndex)),
			Departure:         textOf(row.Find(e.sel.Departure)),
			IsRealTime:        row.HasClass(e.sel.RealTimeClass),
		}
		e.keep(out, i, trip)
	})
	return out, nil
}

func (e *Extractor) extractJSON(body []byte) (*Extraction, error) {
	var entries []json.RawMessage

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Trips []json.RawMessage `json:"trips"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, ExtractionFailure(err, "cannot decode trips payload")
		}
		entries = wrapper.Trips
	} else if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, ExtractionFailure(err, "cannot decode trips payload")
	}

	out := &Extraction{Trips: make([]models.Trip, 0, len(entries))}
	for i, raw := range entries {
		// Cada campo se lee por separado: un campo con tipo inesperado queda vacío
		// sin arrastrar al resto de la entrada.
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			out.Dropped = append(out.Dropped, Diagnostic{Index: i, Reason: "entry is not an object"})
			continue
		}
		e.keep(out, i, models.Trip{
			Route:             stringField(fields["route"]),
			RouteName:         stringField(fields["route_name"]),
			DestinationDetail: stringField(fields["destination_detail"]),
			Departure:         stringField(fields["departure"]),
			IsRealTime:        boolField(fields["is_real_time"]),
		})
	}
	return out, nil
}

// stringField acepta un string o un número (ej: "route": 7); cualquier otra cosa queda vacía
func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// boolField solo reconoce booleanos JSON; "true" como string cuenta como false
func boolField(raw json.RawMessage) bool {
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil {
		return false
	}
	return b
}

// keep agrega el viaje si pasa la validación, o registra el descarte
func (e *Extractor) keep(out *Extraction, index int, trip models.Trip) {
	if err := e.validate.Struct(trip); err != nil {
		out.Dropped = append(out.Dropped, Diagnostic{Index: index, Reason: describe(err)})
		return
	}
	out.Trips = append(out.Trips, trip)
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return "missing " + strings.Join(fields, ", ")
}

func textOf(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.First().Text())
}
