package api

import (
	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/pkg/openapi"
)

func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(schemas())
	spec.Components.AddResponses(map[string]*openapi.Response{
		"Fault": openapi.ResponseJSON("Structured fault", "Fault"),
	})

	id := openapi.PathParam("id", "Submission ID")
	faultResponses := func(codes ...int) map[int]*openapi.Response {
		out := map[int]*openapi.Response{}
		for _, c := range codes {
			out[c] = openapi.ResponseRef("Fault")
		}
		return out
	}
	with := func(base map[int]*openapi.Response, code int, r *openapi.Response) map[int]*openapi.Response {
		base[code] = r
		return base
	}

	spec.Paths["/submissions"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List submissions",
			Tags:    []string{"Submissions"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("search", "string", "Search institution, department or academic year", false),
				openapi.QueryParam("institution_id", "string", "Filter by institution", false),
				openapi.QueryParam("department_id", "string", "Filter by department", false),
				openapi.QueryParam("framework", "string", "Filter by framework", false),
				openapi.QueryParam("status", "string", "Filter by guard verdict", false),
				openapi.QueryParam("year", "integer", "Filter by starting year", false),
				openapi.QueryParam("year_from", "integer", "Earliest starting year", false),
				openapi.QueryParam("year_to", "integer", "Latest starting year", false),
				openapi.QueryParam("sort", "string", "Comma-separated fields such as Year or -CreatedAt; - sorts descending", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Page of submissions", "SubmissionPage"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Score and store a submission",
			Description: "Submissions sealed invalid by the guard are stored with their reason.",
			Tags:        []string{"Submissions"},
			RequestBody: openapi.RequestBodyJSON("CreateSubmission", true),
			Responses: with(faultResponses(400, 422),
				201, openapi.ResponseJSON("Scored submission", "Submission")),
		},
	}

	spec.Paths["/submissions/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search submissions",
			Tags:        []string{"Submissions"},
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Page of submissions", "SubmissionPage"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/submissions/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a submission",
			Tags:       []string{"Submissions"},
			Parameters: []*openapi.Parameter{id},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Submission", "Submission"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a submission and its evidence snapshot",
			Tags:       []string{"Submissions"},
			Parameters: []*openapi.Parameter{id},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/submissions/{id}/reprocess"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Rescore a submission from its evidence snapshot",
			Tags:       []string{"Submissions"},
			Parameters: []*openapi.Parameter{id},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Child submission", "Submission"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/submissions/{id}/lineage"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Reprocessing lineage",
			Tags:       []string{"Submissions"},
			Parameters: []*openapi.Parameter{id},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Lineage", "Lineage"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/submissions/{id}/kpis/{kpi}/explain"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:     "Explain a KPI result",
			Description: "Fails rather than improvising when cited evidence cannot be resolved.",
			Tags:        []string{"Submissions"},
			Parameters: []*openapi.Parameter{
				id,
				{Name: "kpi", In: "path", Required: true, Description: "KPI ID", Schema: &openapi.Schema{Type: "string"}},
				openapi.QueryParam("format", "string", "text for a plain-text rendering", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Explanation", "Explanation"),
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/evidence/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Download the evidence snapshot a submission was scored from",
			Tags:       []string{"Evidence"},
			Parameters: []*openapi.Parameter{id},
			Responses: map[int]*openapi.Response{
				200: {Description: "Evidence snapshot"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	analytics := []struct {
		path, summary, request, response string
	}{
		{"/analytics/compare", "Compare submissions KPI by KPI", "CompareRequest", "Comparison"},
		{"/analytics/trend", "Year-over-year trend of one KPI", "TrendRequest", "TrendResult"},
		{"/analytics/forecast", "Forecast one KPI", "ForecastRequest", "ForecastResult"},
	}
	for _, a := range analytics {
		spec.Paths[a.path] = &openapi.PathItem{
			Post: &openapi.Operation{
				Summary:     a.summary,
				Tags:        []string{"Analytics"},
				RequestBody: openapi.RequestBodyJSON(a.request, true),
				Responses: with(faultResponses(400, 422),
					200, openapi.ResponseJSON(a.summary, a.response)),
			},
		}
	}

	return spec
}

func schemas() map[string]*openapi.Schema {
	str := &openapi.Schema{Type: "string"}
	obj := &openapi.Schema{Type: "object"}
	uuid := &openapi.Schema{Type: "string", Format: "uuid"}
	frameworks := &openapi.Schema{Type: "string", Enum: []any{"aicte", "nba", "naac", "nirf"}}
	sufficiency := openapi.Bounded("number", 0, 1)
	sufficiency.Description = "Fraction of required evidence present; derived when absent"

	scope := map[string]*openapi.Schema{
		"submission_ids": {Type: "array", Items: uuid},
		"institution_id": str,
		"department_id":  str,
		"framework":      frameworks,
	}
	withKPI := func(extra map[string]*openapi.Schema) map[string]*openapi.Schema {
		out := map[string]*openapi.Schema{"kpi_id": str}
		for k, v := range scope {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	return map[string]*openapi.Schema{
		"Fault": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"error_kind": str,
				"message":    str,
				"context":    obj,
			},
			Required: []string{"error_kind", "message"},
		},
		"EvidenceRecord": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                 str,
				"field_id":           str,
				"raw_value":          {Description: "Number, string or boolean as extracted"},
				"snippet":            str,
				"page_number":        {Type: "integer"},
				"source_document_id": str,
			},
			Required: []string{"field_id", "raw_value"},
		},
		"CreateSubmission": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"institution_id": str,
				"department_ids": {Type: "array", Items: str, Description: "Exactly one department"},
				"academic_year":  {Type: "string", Example: "2023-24"},
				"framework":      frameworks,
				"evidence":       {Type: "array", Items: openapi.SchemaRef("EvidenceRecord")},
				"sufficiency":    sufficiency,
			},
			Required: []string{"institution_id", "department_ids", "academic_year", "framework"},
		},
		"Submission": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":               uuid,
				"parent_id":        uuid,
				"institution_id":   str,
				"department_id":    str,
				"academic_year":    str,
				"framework":        frameworks,
				"overall_score":    {Type: "number", Description: "null when no KPI has a value"},
				"sufficiency":      openapi.Bounded("number", 0, 1),
				"status":           {Type: "string", Enum: []any{"valid", "invalid"}},
				"invalid_reason":   str,
				"kpi_results":      obj,
				"compliance_flags": {Type: "array", Items: obj},
				"evidence_key":     str,
			},
		},
		"SubmissionPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Submission")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
				"has_more":    {Type: "boolean"},
			},
		},
		"Lineage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"root_id":  uuid,
				"versions": {Type: "array", Items: openapi.SchemaRef("Submission")},
			},
		},
		"Explanation":     obj,
		"CompareRequest":  {Type: "object", Properties: scope},
		"TrendRequest":    {Type: "object", Properties: withKPI(nil), Required: []string{"kpi_id"}},
		"ForecastRequest": {Type: "object", Properties: withKPI(map[string]*openapi.Schema{"horizon": {Type: "integer", Default: 1}}), Required: []string{"kpi_id"}},
		"Comparison":      obj,
		"TrendResult":     obj,
		"ForecastResult":  obj,
	}
}
