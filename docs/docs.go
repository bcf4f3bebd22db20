// Package docs is generated by swag from the handler annotations.
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
        "/billing/checkout": {
            "post": {
                "description": "Creates a Stripe Checkout session for a credit pack and returns its URL.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["billing"],
                "summary": "Buy a credit pack",
                "parameters": [
                    {"description": "Credit pack", "name": "checkout", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CheckoutRequestDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CheckoutResponseDTO"}},
                    "400": {"description": "invalid request payload", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "failed to create checkout session", "schema": {"type": "string"}}
                }
            }
        },
        "/clips/{clipId}": {
            "delete": {
                "description": "Deletes the clip and its video. The source upload is removed with its last clip.",
                "produces": ["application/json"],
                "tags": ["clips"],
                "summary": "Delete a clip",
                "parameters": [
                    {"type": "string", "description": "Clip ID", "name": "clipId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClipDeleteResponseDTO"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}},
                    "500": {"description": "Failed to delete clip", "schema": {"type": "string"}}
                }
            }
        },
        "/clips/{clipId}/play-url": {
            "get": {
                "description": "Returns a time-limited signed URL for streaming the clip.",
                "produces": ["application/json"],
                "tags": ["clips"],
                "summary": "Get a clip playback URL",
                "parameters": [
                    {"type": "string", "description": "Clip ID", "name": "clipId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PlaybackURLResponseDTO"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}},
                    "500": {"description": "Failed to generate play URL", "schema": {"type": "string"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "description": "Returns the caller's credit balance, uploads and clips.",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Get the dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DashboardResponseDTO"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "user not found", "schema": {"type": "string"}},
                    "500": {"description": "Failed to load dashboard", "schema": {"type": "string"}}
                }
            }
        },
        "/dlq": {
            "post": {
                "description": "Pub/Sub push endpoint for process-video jobs that exhausted their retries.",
                "consumes": ["application/json"],
                "tags": ["internal"],
                "summary": "Record a dead-lettered job",
                "parameters": [
                    {"description": "Pub/Sub push message", "name": "message", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.PubSubPushRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Invalid Pub/Sub message format", "schema": {"type": "string"}}
                }
            }
        },
        "/uploads": {
            "post": {
                "description": "Registers a source video and returns a presigned URL to PUT it to.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["uploads"],
                "summary": "Start an upload",
                "parameters": [
                    {"description": "Upload metadata", "name": "upload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UploadCreateDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.UploadResponseDTO"}},
                    "400": {"description": "Invalid JSON payload", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "Failed to start upload", "schema": {"type": "string"}}
                }
            }
        },
        "/uploads/{uploadedFileId}/process": {
            "post": {
                "description": "Queues the uploaded video for clip generation. Repeated calls are no-ops.",
                "produces": ["application/json"],
                "tags": ["uploads"],
                "summary": "Process an uploaded video",
                "parameters": [
                    {"type": "string", "description": "Uploaded file ID", "name": "uploadedFileId", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.ProcessResponseDTO"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}},
                    "500": {"description": "Failed to submit upload for processing", "schema": {"type": "string"}}
                }
            }
        },
        "/webhooks/stripe": {
            "post": {
                "description": "Receives Stripe events. Completed checkouts add credits to the buyer.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["billing"],
                "summary": "Stripe webhook",
                "parameters": [
                    {"type": "string", "description": "Stripe signature", "name": "Stripe-Signature", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WebhookResponseDTO"}},
                    "400": {"description": "invalid signature", "schema": {"type": "string"}},
                    "404": {"description": "user not found", "schema": {"type": "string"}},
                    "500": {"description": "webhook processing failed", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CheckoutRequestDTO": {
            "type": "object",
            "required": ["pack"],
            "properties": {"pack": {"type": "string", "enum": ["small", "medium", "large"]}}
        },
        "dto.CheckoutResponseDTO": {
            "type": "object",
            "properties": {"url": {"type": "string"}}
        },
        "dto.ClipDeleteResponseDTO": {
            "type": "object",
            "properties": {
                "object_deleted": {"type": "boolean"},
                "success": {"type": "boolean"},
                "uploaded_file_deleted": {"type": "boolean"},
                "warning": {"type": "string"}
            }
        },
        "dto.DashboardClipDTO": {
            "type": "object",
            "properties": {
                "clip_id": {"type": "string"},
                "created_at": {"type": "string"},
                "uploaded_file_id": {"type": "string"}
            }
        },
        "dto.DashboardResponseDTO": {
            "type": "object",
            "properties": {
                "clips": {"type": "array", "items": {"$ref": "#/definitions/dto.DashboardClipDTO"}},
                "credits": {"type": "integer"},
                "uploaded_files": {"type": "array", "items": {"$ref": "#/definitions/dto.DashboardUploadDTO"}}
            }
        },
        "dto.DashboardUploadDTO": {
            "type": "object",
            "properties": {
                "clip_count": {"type": "integer"},
                "created_at": {"type": "string"},
                "display_name": {"type": "string"},
                "status": {"type": "string"},
                "uploaded": {"type": "boolean"},
                "uploaded_file_id": {"type": "string"}
            }
        },
        "dto.PlaybackURLResponseDTO": {
            "type": "object",
            "properties": {
                "expires_in_seconds": {"type": "integer"},
                "url": {"type": "string"}
            }
        },
        "dto.ProcessResponseDTO": {
            "type": "object",
            "properties": {
                "enqueued": {"type": "boolean"},
                "message_id": {"type": "string"},
                "uploaded_file_id": {"type": "string"}
            }
        },
        "dto.PubSubMessage": {
            "type": "object",
            "properties": {
                "attributes": {"type": "object", "additionalProperties": {"type": "string"}},
                "data": {"type": "string"},
                "messageId": {"type": "string"}
            }
        },
        "dto.PubSubPushRequest": {
            "type": "object",
            "properties": {
                "message": {"$ref": "#/definitions/dto.PubSubMessage"},
                "subscription": {"type": "string"}
            }
        },
        "dto.UploadCreateDTO": {
            "type": "object",
            "required": ["content_type", "filename"],
            "properties": {
                "content_type": {"type": "string", "enum": ["video/mp4", "video/quicktime", "video/webm", "video/x-matroska"]},
                "filename": {"type": "string", "maxLength": 255}
            }
        },
        "dto.UploadResponseDTO": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "s3_key": {"type": "string"},
                "upload_url": {"type": "string"},
                "uploaded_file_id": {"type": "string"}
            }
        },
        "dto.WebhookResponseDTO": {
            "type": "object",
            "properties": {"received": {"type": "boolean"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Clipper API",
	Description:      "Uploads, clip playback and credit purchases.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
