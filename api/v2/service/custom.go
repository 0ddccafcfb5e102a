package service

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/MinterTeam/minter-presale/core/merkle"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/gin-gonic/gin"
)

const csvPageSize = 1000

type merkleVerifyRequest struct {
	Root       string   `json:"root"`
	Address    string   `json:"address" binding:"required"`
	PrivateCap string   `json:"private_cap"`
	PublicCap  string   `json:"public_cap"`
	Proof      []string `json:"proof"`
}

// merkleVerify checks an allocation claim. The root of the sale is used when
// the request does not carry one.
func (s *Service) merkleVerify(c *gin.Context) {
	var req merkleVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": map[string]string{
				"message": err.Error(),
			},
		})
		return
	}

	address, err := types.AddressFromString(req.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": map[string]string{
				"message": err.Error(),
			},
		})
		return
	}

	var caps [2]uint64
	for i, value := range []string{req.PrivateCap, req.PublicCap} {
		if value == "" {
			continue
		}
		caps[i], err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": map[string]string{
					"message": err.Error(),
				},
			})
			return
		}
	}

	root := req.Root
	if root == "" {
		cState := s.blockchain.CurrentState()
		if cState == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": map[string]string{
					"message": "state is not initialized",
				},
			})
			return
		}
		cState.RLock()
		root = cState.Sale().Config().MerkleRoot
		cState.RUnlock()
	}

	leaf := merkle.LeafHash(address.String(), caps[0], caps[1])
	computed, err := merkle.ComputeRoot(leaf, req.Proof)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": map[string]string{
				"message": err.Error(),
			},
		})
		return
	}

	verifyErr := merkle.Verify(root, address.String(), caps[0], caps[1], req.Proof)
	response := gin.H{
		"root":          root,
		"leaf":          leaf.String(),
		"computed_root": computed.String(),
		"valid":         verifyErr == nil,
	}
	if verifyErr != nil {
		response["log"] = verifyErr.Error()
	}
	c.JSON(http.StatusOK, response)
}

// participantsCSV dumps the sale participants of the latest state
func (s *Service) participantsCSV(c *gin.Context) {
	cState := s.blockchain.CurrentState()
	if cState == nil {
		c.String(http.StatusServiceUnavailable, "state is not initialized")
		return
	}
	cState.RLock()
	defer cState.RUnlock()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="participants.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"address", "fund_balance", "reward_balance", "private_sold_fund"})

	count := cState.Sale().ParticipantsCount()
	for page := uint64(0); page*csvPageSize < count; page++ {
		for _, address := range cState.Sale().Participants(page, csvPageSize) {
			participant := cState.Sale().GetParticipant(address)
			if participant == nil {
				continue
			}
			_ = w.Write([]string{
				address.String(),
				strconv.FormatUint(participant.FundBalance, 10),
				strconv.FormatUint(participant.RewardBalance, 10),
				strconv.FormatUint(participant.PrivateSoldFund, 10),
			})
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		s.logger.Error("Failed to write participants csv", "err", err)
	}
}

// CustomHandlers return custom http methods
func (s *Service) CustomHandlers() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	custom := r.Group("/v2/custom")
	custom.POST("/merkle/verify", s.merkleVerify)
	custom.GET("/participants.csv", s.participantsCSV)
	return r
}
