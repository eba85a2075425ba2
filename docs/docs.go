// Package docs registra en swag el documento OpenAPI de la API. Se mantiene
// a mano junto con las anotaciones godoc de los handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/identifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["identifications"],
                "summary": "Buscar identificaciones",
                "parameters": [
                    {"type": "string", "name": "nni", "in": "query"},
                    {"type": "string", "name": "nni_match", "in": "query"},
                    {"type": "string", "name": "breed", "in": "query"},
                    {"type": "string", "name": "sex", "in": "query"},
                    {"type": "string", "name": "species_type", "in": "query"},
                    {"type": "string", "name": "breeder_id", "in": "query"},
                    {"type": "string", "name": "holding_id", "in": "query"},
                    {"type": "string", "name": "local_agent_id", "in": "query"},
                    {"type": "string", "name": "born_from", "in": "query", "description": "YYYY-MM-DD, inclusivo"},
                    {"type": "string", "name": "born_to", "in": "query", "description": "YYYY-MM-DD, inclusivo"},
                    {"type": "string", "name": "created_from", "in": "query", "description": "RFC3339, inclusivo"},
                    {"type": "string", "name": "created_to", "in": "query", "description": "RFC3339, inclusivo"},
                    {"type": "integer", "name": "page", "in": "query", "description": "desde 1 (default 1)"},
                    {"type": "integer", "name": "page_size", "in": "query", "description": "default 20, máximo 200; valores mayores se recortan a 200 y la respuesta informa el page_size aplicado"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["identifications"],
                "summary": "Registrar identificación",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "409": {"description": "Conflict"}}
            }
        },
        "/identifications/export": {
            "get": {
                "produces": ["text/csv", "text/tab-separated-values"],
                "tags": ["identifications"],
                "summary": "Exportar identificaciones",
                "parameters": [{"type": "string", "name": "format", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/identifications/by-nni/{nni}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["identifications"],
                "summary": "Obtener identificación por NNI",
                "parameters": [{"type": "string", "name": "nni", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/identifications/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["identifications"],
                "summary": "Obtener identificación",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["identifications"],
                "summary": "Actualizar identificación (parcial)",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            },
            "delete": {
                "tags": ["identifications"],
                "summary": "Borrar identificación",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/identifications/{id}/growth": {
            "get": {
                "produces": ["application/json"],
                "tags": ["growth"],
                "summary": "Estadísticas de crecimiento",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/identifications/{id}/measurements": {
            "get": {
                "produces": ["application/json"],
                "tags": ["growth"],
                "summary": "Historial de mediciones",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["growth"],
                "summary": "Ingestar medición",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/rebouclages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rebouclages"],
                "summary": "Buscar re-crotalados",
                "parameters": [
                    {"type": "string", "name": "nni", "in": "query"},
                    {"type": "string", "name": "nni_match", "in": "query"},
                    {"type": "string", "name": "agent_id", "in": "query"},
                    {"type": "string", "name": "mode", "in": "query"},
                    {"type": "string", "name": "from", "in": "query", "description": "RFC3339, inclusivo"},
                    {"type": "string", "name": "to", "in": "query", "description": "RFC3339, inclusivo"},
                    {"type": "integer", "name": "page", "in": "query", "description": "desde 1 (default 1)"},
                    {"type": "integer", "name": "page_size", "in": "query", "description": "default 20, máximo 200; valores mayores se recortan a 200 y la respuesta informa el page_size aplicado"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/rebouclages/manual": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rebouclages"],
                "summary": "Registrar re-crotalado manual",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/rebouclages/automatic": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rebouclages"],
                "summary": "Registrar re-crotalado automático",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/rebouclages/export": {
            "get": {
                "produces": ["text/csv", "text/tab-separated-values"],
                "tags": ["rebouclages"],
                "summary": "Exportar re-crotalados",
                "parameters": [{"type": "string", "name": "format", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rebouclages/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rebouclages"],
                "summary": "Obtener re-crotalado",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rebouclages"],
                "summary": "Corregir re-crotalado",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["rebouclages"],
                "summary": "Borrar re-crotalado",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Livestock Registry API",
	Description:      "Registro de identificación de bovinos, re-crotalado y crecimiento.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
