/*
eduplan is a client for a streaming educational-content generation service.

The service produces course outlines, lesson plans, slide decks and
assessments over a server-sent-event framed HTTP API. This module provides
the protocol client: bearer-credential management with silent refresh
(pkg/credential, pkg/httpclient), the event-stream decoder (pkg/sse), the
request/stream orchestrator (pkg/generator) and conversation continuity
across streamed exchanges (pkg/conversation).
*/
package eduplan
