package cellosaurus

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/scienceol/cellbank/internal/config"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/repo"
)

type termValue struct {
	Type        string `json:"type"`
	Terminology string `json:"terminology"`
	Accession   string `json:"accession"`
	Value       string `json:"value"`
}

type cellLine struct {
	AccessionList []termValue `json:"accession-list"`
	NameList      []termValue `json:"name-list"`
	Category      string      `json:"category"`
	Sex           string      `json:"sex"`
	SpeciesList   []termValue `json:"species-list"`
	DiseaseList   []termValue `json:"disease-list"`
}

type searchResponse struct {
	Cellosaurus struct {
		CellLineList []cellLine `json:"cell-line-list"`
	} `json:"Cellosaurus"`
}

type cellosaurusImpl struct {
	client *resty.Client
}

func NewCellosaurusRepo() repo.CellosaurusRepo {
	conf := config.Global().RPC.Cellosaurus
	return New(conf.Addr, conf.Timeout)
}

func New(baseURL string, timeout time.Duration) repo.CellosaurusRepo {
	return &cellosaurusImpl{
		client: resty.New().
			SetTimeout(timeout).
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
	}
}

func (c *cellosaurusImpl) GetCellLine(ctx context.Context, name string) (*repo.CellLineInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, code.ParamErr.WithMsg("empty cell line name")
	}

	resp := &searchResponse{}
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      "id:" + name,
			"format": "json",
			"rows":   "5",
		}).
		SetResult(resp).
		Get("/search/cell-line")
	if err != nil {
		logger.Errorf(ctx, "request cellosaurus %s err: %+v", name, err)
		return nil, code.RPCHttpErr.WithErr(err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, code.RPCHttpCodeErr.WithMsgf("cellosaurus query failed: status %d", res.StatusCode())
	}

	lines := resp.Cellosaurus.CellLineList
	if len(lines) == 0 {
		return nil, code.CellLineNotFound.WithMsg(name)
	}
	// prefer the entry whose identifier matches exactly
	picked := lines[0]
	for _, l := range lines {
		if strings.EqualFold(identifier(l), name) {
			picked = l
			break
		}
	}
	return toInfo(picked), nil
}

func identifier(l cellLine) string {
	for _, n := range l.NameList {
		if n.Type == "identifier" {
			return n.Value
		}
	}
	if len(l.NameList) > 0 {
		return l.NameList[0].Value
	}
	return ""
}

func toInfo(l cellLine) *repo.CellLineInfo {
	info := &repo.CellLineInfo{
		Name:     identifier(l),
		Category: l.Category,
		Sex:      l.Sex,
		Species:  []string{},
		Diseases: []string{},
	}
	for _, a := range l.AccessionList {
		if a.Type == "primary" || info.Accession == "" {
			info.Accession = a.Value
		}
	}
	for _, s := range l.SpeciesList {
		info.Species = append(info.Species, s.Value)
	}
	for _, d := range l.DiseaseList {
		info.Diseases = append(info.Diseases, d.Value)
	}
	return info
}
