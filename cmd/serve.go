package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lumikey/lumikey/convert"
	"github.com/lumikey/lumikey/db"
	"github.com/lumikey/lumikey/midifile"
	"github.com/lumikey/lumikey/model"
	"github.com/lumikey/lumikey/musicxml"
	"github.com/lumikey/lumikey/util"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var serveAddr string
var serveMetadata bool

var conversionsMu sync.Mutex
var conversions = make(map[string]model.ConvertResponse)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().BoolVar(&serveMetadata, "metadata", false, "look up score metadata in DynamoDB")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the converter over HTTP",
	Long:  `Serves the converter over HTTP`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

// HandleConvert accepts a multipart upload under the "file" field and
// answers with the conversion result. Exported so the e2e tests can
// drive it through httptest.
func HandleConvert(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, 400, "expected a multipart upload under 'file'")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, 400, "could not read upload: "+err.Error())
		return
	}

	res, err := convert.Bytes(header.Filename, data)
	if err != nil {
		status := 500
		switch {
		case errors.Is(err, convert.ErrUnsupportedExtension),
			errors.Is(err, convert.ErrNoScoreFound),
			errors.Is(err, musicxml.ErrMalformedXML),
			errors.Is(err, midifile.ErrInvalidHeader):
			status = 422
		}
		writeError(w, status, err.Error())
		return
	}

	resp := model.ConvertResponse{
		Id:       uuid.New().String(),
		Filename: header.Filename,
		Result:   *res,
	}

	if serveMetadata {
		metadatas, err := db.GetScoreMetadatas([]string{header.Filename})
		if err != nil {
			fmt.Printf("Skipping metadata because: %v\n", err)
		} else if m, ok := metadatas[header.Filename]; ok {
			resp.Metadata = &m
		}
	}

	conversionsMu.Lock()
	conversions[resp.Id] = resp
	conversionsMu.Unlock()

	json.NewEncoder(w).Encode(resp)
}

func handleListConversions(w http.ResponseWriter, r *http.Request) {
	conversionsMu.Lock()
	ids := util.GetKeys(conversions)
	conversionsMu.Unlock()
	json.NewEncoder(w).Encode(ids)
}

func handleGetConversion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	conversionsMu.Lock()
	resp, ok := conversions[id]
	conversionsMu.Unlock()
	if !ok {
		writeError(w, 404, "no conversion with id "+id)
		return
	}
	json.NewEncoder(w).Encode(resp)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", HandleConvert).Methods("POST")
	router.HandleFunc("/conversions", handleListConversions).Methods("GET")
	router.HandleFunc("/conversions/{id}", handleGetConversion).Methods("GET")
	router.HandleFunc("/health", handleHealth).Methods("GET")

	handler := cors.Default().Handler(router)
	fmt.Printf("Listening on %v\n", serveAddr)
	log.Fatal(http.ListenAndServe(serveAddr, handler))
}
