// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm provides the language-model client used to phrase
// answers from query results.
package llm

import "context"

// Client generates a free-text answer for a fully assembled prompt.
//
// Description:
//
//	Implementations return an error on any transport or API failure;
//	the caller decides how failures surface to the user. A successful
//	call with no generated text is not an error.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
