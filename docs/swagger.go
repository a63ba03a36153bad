// Package docs Haltestellenmonitor API.
//
// Табло отправлений VVO поверх EFA/TRIAS: остановки, табло с автообновлением,
// рейсы, live activities и избранное.
// Регенерация: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "API Support"},
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {
            "get": {"tags": ["Health"], "summary": "Состояние сервиса", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/v1/stops": {
            "get": {"tags": ["Stops"], "summary": "Поиск остановок", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "number", "name": "lat", "in": "query"},
                    {"type": "number", "name": "lon", "in": "query"},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/stops/nearest": {
            "get": {"tags": ["Stops"], "summary": "Ближайшие остановки", "produces": ["application/json"],
                "parameters": [
                    {"type": "number", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "name": "lon", "in": "query", "required": true},
                    {"type": "integer", "default": 5, "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/stops/{gid}": {
            "get": {"tags": ["Stops"], "summary": "Остановка по DHID", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "gid", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/stops/{gid}/departures": {
            "get": {"tags": ["Departures"], "summary": "Табло остановки", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "gid", "in": "path", "required": true},
                    {"type": "string", "name": "time", "in": "query"},
                    {"type": "integer", "default": 40, "name": "limit", "in": "query"},
                    {"type": "string", "name": "modes", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "default": "trias", "name": "source", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}}}
        },
        "/api/v1/boards": {
            "post": {"tags": ["Boards"], "summary": "Открыть табло", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.BoardRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/boards/{id}": {
            "get": {"tags": ["Boards"], "summary": "Текущее табло сессии", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "modes", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Boards"], "summary": "Сменить остановку или время", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.BoardRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Boards"], "summary": "Закрыть табло",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/boards/{id}/refresh": {
            "post": {"tags": ["Boards"], "summary": "Обновить табло сейчас", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"202": {"description": "Accepted"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/trips": {
            "post": {"tags": ["Trips"], "summary": "Открыть рейс", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TripRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/trips/{id}": {
            "get": {"tags": ["Trips"], "summary": "Остановки рейса", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "q", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Trips"], "summary": "Закрыть рейс",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/activities": {
            "get": {"tags": ["Activities"], "summary": "Активные live activities", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Activities"], "summary": "Запустить live activity", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ActivityRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/activities/{id}": {
            "get": {"tags": ["Activities"], "summary": "Состояние live activity", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Activities"], "summary": "Завершить live activity",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/favorites": {
            "get": {"tags": ["Favorites"], "summary": "Избранные остановки", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/favorites/default": {
            "get": {"tags": ["Favorites"], "summary": "Остановка для виджета", "produces": ["application/json"],
                "parameters": [
                    {"type": "number", "name": "lat", "in": "query"},
                    {"type": "number", "name": "lon", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/favorites/{stop_id}": {
            "post": {"tags": ["Favorites"], "summary": "Добавить в избранное", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "stop_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Favorites"], "summary": "Убрать из избранного", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "stop_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/favorites/{stop_id}/toggle": {
            "post": {"tags": ["Favorites"], "summary": "Переключить избранное", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "stop_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        }
    },
    "definitions": {
        "dto.BoardRequest": {
            "type": "object",
            "required": ["stop_id"],
            "properties": {
                "stop_id": {"type": "string", "example": "de:14612:28"},
                "time": {"type": "string", "format": "date-time"},
                "limit": {"type": "integer", "maximum": 200, "minimum": 1}
            }
        },
        "dto.TripRequest": {
            "type": "object",
            "required": ["stop_id"],
            "properties": {
                "stop_id": {"type": "string"},
                "event": {"type": "object"}
            }
        },
        "dto.ActivityRequest": {
            "type": "object",
            "required": ["stop_id"],
            "properties": {
                "stop_id": {"type": "string"},
                "event": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "2.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Haltestellenmonitor API",
	Description:      "Табло отправлений общественного транспорта Дрездена (VVO) поверх EFA/TRIAS.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
