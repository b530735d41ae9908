package providers

import "github.com/lumenchat/chatkit/chat"

// deltaExtractor turns one SSE record payload into a text delta. A
// malformed payload yields ("", false) and the record is skipped, not
// fatal. done reports a provider-level terminal record (distinct from the
// literal [DONE] sentinel, which the stream handles itself).
type deltaExtractor interface {
	Extract(payload []byte) (delta string, done bool)
}

// strategy is the per-provider variation point: everything else in the
// client is shared.
type strategy struct {
	// batchText extracts the concatenated reply text from a full batch
	// response body. Unparseable bodies yield "".
	batchText func(raw []byte) string

	// newExtractor allocates fresh per-stream state (the Gemini extractor
	// tracks the previously assembled snapshot).
	newExtractor func() deltaExtractor
}

func strategyFor(p chat.Provider) strategy {
	switch p {
	case chat.ProviderOpenAI:
		return strategy{
			batchText:    openAIBatchText,
			newExtractor: func() deltaExtractor { return &openAIExtractor{} },
		}
	case chat.ProviderOpenAIResponses:
		return strategy{
			batchText:    responsesBatchText,
			newExtractor: func() deltaExtractor { return &responsesExtractor{} },
		}
	case chat.ProviderAnthropic:
		return strategy{
			batchText:    anthropicBatchText,
			newExtractor: func() deltaExtractor { return &anthropicExtractor{} },
		}
	default:
		return strategy{
			batchText:    geminiBatchText,
			newExtractor: func() deltaExtractor { return &geminiExtractor{} },
		}
	}
}
