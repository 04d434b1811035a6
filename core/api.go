package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"

	"review-ledger/jsonrpc"
	"review-ledger/model"
	"review-ledger/util"
)

// Ledger API methods.
const (
	ApiSubmitReview     string = "ledger_submitReview"
	ApiGetReviews              = "ledger_getReviews"
	ApiGetConsensus            = "ledger_getConsensus"
	ApiVerifyChain             = "ledger_verifyChain"
	ApiVerifyReview            = "ledger_verifyReview"
	ApiGetStats                = "ledger_getStats"
	ApiGetBlock                = "ledger_getBlock"
	ApiGetReviewerStats        = "ledger_getReviewerStats"
)

var requiredReviewFields = []string{"article_id", "reviewer_id", "review_type", "rating", "comment"}

// Api serves the ledger to the surrounding application: JSON-RPC 2.0 over
// HTTP POST on a single endpoint.
type Api struct {
	svr *Server

	srv *http.Server

	wg sync.WaitGroup
}

func NewApi(svr *Server) *Api {
	a := &Api{svr: svr}

	timeout := 10 * time.Second
	if svr.cfg.Api.Timeout != nil {
		timeout = util.MustParseDuration(*svr.cfg.Api.Timeout)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", a.handle)
	a.srv = &http.Server{
		Addr:         *svr.cfg.Api.Listen,
		Handler:      mux,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	a.wg.Add(1)
	go a.listen()
	return a
}

func (a *Api) listen() {
	defer a.wg.Done()

	log.Infof("Api listening on %s", a.srv.Addr)
	if err := a.srv.ListenAndServe(); err != http.ErrServerClosed {
		// unexpected error. port in use?
		log.Fatalf("ListenAndServe(): %v", err)
	}
}

func (a *Api) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		log.Errorf("Api shutdown: %v", err)
	}

	a.wg.Wait()
}

func (a *Api) handle(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "unable to read request", http.StatusBadRequest)
		return
	}

	request, err := jsonrpc.UnmarshalRequest(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(jsonrpc.MarshalResponse(jsonrpc.Response{
			Version: jsonrpc.Version,
			Error:   &jsonrpc.Error{Code: jsonrpc.CodeParseError, Message: "invalid request"},
		}))
		return
	}

	log.Debugf("Request method: %v", request.Method)
	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonrpc.MarshalResponse(a.dispatch(req.Context(), &request)))
}

func (a *Api) dispatch(ctx context.Context, request *jsonrpc.Request) jsonrpc.Response {
	resp := jsonrpc.Response{Id: request.Id, Version: jsonrpc.Version}

	params, err := request.DecodeParams()
	if err != nil {
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: "invalid params"}
		return resp
	}

	switch request.Method {
	case ApiSubmitReview:
		a.handleSubmitReview(ctx, params, &resp)
	case ApiGetReviews:
		a.handleGetReviews(params, &resp)
	case ApiGetConsensus:
		a.handleGetConsensus(params, &resp)
	case ApiVerifyChain:
		resp.Result = map[string]bool{"valid": a.svr.ledger.VerifyChain()}
	case ApiVerifyReview:
		a.handleVerifyReview(ctx, params, &resp)
	case ApiGetStats:
		resp.Result = a.svr.ledger.Stats()
	case ApiGetBlock:
		a.handleGetBlock(params, &resp)
	case ApiGetReviewerStats:
		a.handleGetReviewerStats(params, &resp)
	default:
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "Method not found"}
	}

	return resp
}

// decodeParams decodes a params object into a typed struct, coercing JSON
// numbers onto the target field types.
func decodeParams(params map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(params)
}

type submitReviewParams struct {
	ArticleId  int64                  `mapstructure:"article_id"`
	ReviewerId string                 `mapstructure:"reviewer_id"`
	ReviewType string                 `mapstructure:"review_type"`
	Rating     float64                `mapstructure:"rating"`
	Comment    string                 `mapstructure:"comment"`
	Metadata   map[string]interface{} `mapstructure:"metadata"`
}

func (a *Api) handleSubmitReview(ctx context.Context, params map[string]interface{}, resp *jsonrpc.Response) {
	for _, field := range requiredReviewFields {
		if _, ok := params[field]; !ok {
			resp.Error = &jsonrpc.Error{
				Code:    jsonrpc.CodeInvalidParams,
				Message: fmt.Sprintf("missing required field %q", field),
			}
			return
		}
	}

	var p submitReviewParams
	if err := decodeParams(params, &p); err != nil {
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
		return
	}

	result, err := a.svr.ledger.SubmitReview(ctx, &model.Review{
		ArticleId:  p.ArticleId,
		ReviewerId: p.ReviewerId,
		ReviewType: p.ReviewType,
		Rating:     p.Rating,
		Comment:    p.Comment,
		Metadata:   p.Metadata,
	})
	if err != nil {
		var persistence *PersistenceError
		if errors.As(err, &persistence) {
			// The chain holds the block; durability is retried out of band.
			log.Errorf("Block sealed but not persisted: %v", err)
			resp.Result = result
			return
		}
		resp.Error = apiError(err)
		return
	}

	resp.Result = result
}

type articleParams struct {
	ArticleId int64 `mapstructure:"article_id"`
}

func (a *Api) handleGetReviews(params map[string]interface{}, resp *jsonrpc.Response) {
	var p articleParams
	if err := decodeParams(params, &p); err != nil {
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
		return
	}
	resp.Result = a.svr.ledger.ReviewsForArticle(p.ArticleId)
}

func (a *Api) handleGetConsensus(params map[string]interface{}, resp *jsonrpc.Response) {
	var p articleParams
	if err := decodeParams(params, &p); err != nil {
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
		return
	}
	resp.Result = a.svr.ledger.Consensus(p.ArticleId)
}

type verifyReviewParams struct {
	ReviewHash string `mapstructure:"review_hash"`
}

func (a *Api) handleVerifyReview(ctx context.Context, params map[string]interface{}, resp *jsonrpc.Response) {
	var p verifyReviewParams
	if err := decodeParams(params, &p); err != nil || p.ReviewHash == "" {
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: "review_hash required"}
		return
	}

	result, err := a.svr.VerifyReview(ctx, p.ReviewHash)
	if err != nil {
		resp.Error = apiError(err)
		return
	}
	resp.Result = result
}

type blockParams struct {
	Index *int64 `mapstructure:"index"`
	Hash  string `mapstructure:"hash"`
}

func (a *Api) handleGetBlock(params map[string]interface{}, resp *jsonrpc.Response) {
	var p blockParams
	if err := decodeParams(params, &p); err != nil {
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
		return
	}

	var block *model.Block
	switch {
	case p.Index != nil:
		block = a.svr.ledger.BlockByIndex(*p.Index)
	case p.Hash != "":
		block = a.svr.ledger.BlockByHash(p.Hash)
	default:
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: "index or hash required"}
		return
	}

	if block == nil {
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeLedgerError, Message: "block not found"}
		return
	}
	resp.Result = block
}

type reviewerParams struct {
	ReviewerId string `mapstructure:"reviewer_id"`
}

func (a *Api) handleGetReviewerStats(params map[string]interface{}, resp *jsonrpc.Response) {
	var p reviewerParams
	if err := decodeParams(params, &p); err != nil || p.ReviewerId == "" {
		resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: "reviewer_id required"}
		return
	}
	resp.Result = a.svr.ledger.ReviewerStats(p.ReviewerId)
}

func apiError(err error) *jsonrpc.Error {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
	}
	return &jsonrpc.Error{Code: jsonrpc.CodeLedgerError, Message: err.Error()}
}
