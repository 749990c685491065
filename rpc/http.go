package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/andromeda-dag/node/account"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
)

// createTransactionRequest mirrors the JSON body accepted by the
// /create-transaction endpoint.
type createTransactionRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Value     string `json:"value"`
	Payload   string `json:"payload"`
}

// signTransactionRequest mirrors the JSON body accepted by the
// /sign-transaction endpoint.
type signTransactionRequest struct {
	Hash       string `json:"hash"`
	Passphrase string `json:"passphrase"`
	Keystore   string `json:"keystore_path"`
}

// publishTransactionRequest mirrors the JSON body accepted by the
// /publish-transaction endpoint.
type publishTransactionRequest struct {
	Hash string `json:"hash"`
}

// RegisterHandlers attaches the DAG API's HTTP surface to mux, following
// the node's convention of one handler per logical endpoint reading and
// writing plain JSON.
func (s *Service) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/dag", func(w http.ResponseWriter, r *http.Request) {
		data, err := json.Marshal(s.GetDAG())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(data)
	})

	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		data, err := json.Marshal(s.ListTransactions())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(data)
	})

	mux.HandleFunc("/mem-transactions", func(w http.ResponseWriter, r *http.Request) {
		data, err := json.Marshal(s.GetMemTransactions())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(data)
	})

	mux.HandleFunc("/create-transaction", func(w http.ResponseWriter, r *http.Request) {
		var req createTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sender, err := xsig.AddressFromHex(req.Sender)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid sender address: %v", err), http.StatusBadRequest)
			return
		}
		recipient, err := xsig.AddressFromHex(req.Recipient)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid recipient address: %v", err), http.StatusBadRequest)
			return
		}
		value, ok := new(big.Int).SetString(req.Value, 10)
		if !ok {
			http.Error(w, "invalid value: not a base-10 integer", http.StatusBadRequest)
			return
		}

		tx, err := s.CreateTransaction(sender, recipient, value, []byte(req.Payload))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		data, err := json.Marshal(tx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write(data)
	})

	mux.HandleFunc("/sign-transaction", func(w http.ResponseWriter, r *http.Request) {
		var req signTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		hash, err := xhash.FromHex(req.Hash)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid hash: %v", err), http.StatusBadRequest)
			return
		}

		ks := account.NewFileKeystore(req.Keystore, []byte(req.Passphrase))
		sig, err := s.SignTransaction(hash, ks)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		data, err := json.Marshal(sig)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(data)
	})

	mux.HandleFunc("/publish-transaction", func(w http.ResponseWriter, r *http.Request) {
		var req publishTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		hash, err := xhash.FromHex(req.Hash)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid hash: %v", err), http.StatusBadRequest)
			return
		}

		if err := s.PublishTransaction(r.Context(), hash); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
}
