package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	listingsapp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/app/queries"
)

type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h ListingHandler) Create(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	fields, err := req.fields()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := listingsapp.CreateListingCommand{ActingUser: currentActor(c), Fields: fields}
	result, err := commands.Dispatch[listingsapp.CreateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) Search(c *gin.Context) {
	filter, err := searchFilter(c.Query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	result, err := queries.Ask[listingsapp.SearchListingsQuery, []dto.Listing](c.Request.Context(), h.Queries, listingsapp.SearchListingsQuery{Filter: filter})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if result == nil {
		result = []dto.Listing{}
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	result, err := queries.Ask[listingsapp.GetListingQuery, *dto.Listing](c.Request.Context(), h.Queries, listingsapp.GetListingQuery{ListingID: c.Param("id")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Update(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	changes, err := req.changes()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := listingsapp.UpdateListingCommand{ActingUser: currentActor(c), ListingID: c.Param("id"), Changes: changes}
	result, err := commands.Dispatch[listingsapp.UpdateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Delete(c *gin.Context) {
	cmd := listingsapp.DeleteListingCommand{ActingUser: currentActor(c), ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingsapp.DeleteListingCommand, *listingsapp.DeleteListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadImage takes a multipart "image" part.
func (h ListingHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		respondError(c, h.Logger, listingsapp.ErrImageRequired)
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.Logger, listingsapp.ErrImageRequired)
		return
	}
	defer file.Close()

	cmd := listingsapp.UploadImageCommand{
		ActingUser:  currentActor(c),
		ListingID:   c.Param("id"),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	result, err := commands.Dispatch[listingsapp.UploadImageCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ListingHTTP = ListingHandler{}
