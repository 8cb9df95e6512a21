package alerting

const teamJSON = `{"alias": null, "created_at": "2025-05-28T05:11:24", "id": 98,
	"last_checked": "2025-06-01T06:12:45.616871", "name": "Observability",
	"summary": "Observability", "team_id": "PJ1BDNM"}`

const incidentsJSON = `{
	"incidents": [
		{"actionable": null, "annotation": null, "created_at": "Tue, 27 May 2025 00:12:31 GMT",
		 "description": "d", "id": 14388, "incident_id": "Q0WHRE9UJ5ERON", "status": "resolved",
		 "summary": "s", "team": 98, "title": "A", "urgency": "low"}
	],
	"summary": {"2025-05-27": {"high": 0, "low": 1}},
	"team": ` + teamJSON + `
}`
