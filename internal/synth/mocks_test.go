package synth_test

import (
	"context"

	"basegraph.app/correlate/common/llm"
	"basegraph.app/correlate/internal/model"
	"basegraph.app/correlate/internal/retriever"
)

type fakeRetriever struct {
	result     *model.RetrievalResult
	err        error
	lastFilter retriever.Filter
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ int64, query string, filter retriever.Filter) (*model.RetrievalResult, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	out := *f.result
	out.Query = query
	return &out, nil
}

type fakeLLM struct {
	completeFn func(ctx context.Context, req llm.Request) (string, error)
	requests   []llm.Request
}

func (f *fakeLLM) Chat(context.Context, llm.Request, any) (*llm.Response, error) {
	panic("chat is not used by the synthesizer")
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (string, *llm.Response, error) {
	f.requests = append(f.requests, req)
	text, err := f.completeFn(ctx, req)
	if err != nil {
		return "", nil, err
	}
	return text, &llm.Response{PromptTokens: 10, CompletionTokens: 5}, nil
}

func (f *fakeLLM) Model() string { return "fake" }

type fakeCorrelator struct {
	related map[string]*model.RelatedEntities
	calls   []string
}

func (f *fakeCorrelator) Related(_ context.Context, _ int64, _ model.EntityKind, key string, _ int) (*model.RelatedEntities, error) {
	f.calls = append(f.calls, key)
	rel, ok := f.related[key]
	if !ok {
		return nil, context.Canceled
	}
	return rel, nil
}
