package provisioning

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"invprov/internal/application/provisioning/usecases"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
	"invprov/internal/shared/utils"
)

// Handler exposes the provisioning use cases over HTTP.
type Handler struct {
	createServiceUC    usecases.CreateServiceExecutor
	modifyServiceUC    usecases.ModifyServiceExecutor
	changeStatusUC     usecases.ChangeServiceStatusExecutor
	deleteServiceUC    usecases.DeleteServiceExecutor
	transferAccountUC  usecases.TransferAccountExecutor
	renameSubscriberUC usecases.RenameSubscriberExecutor
	getServiceUC       usecases.GetServiceExecutor
	allocateVLANUC     usecases.AllocateVLANExecutor
	seedInventoryUC    usecases.SeedInventoryExecutor
	logger             logger.Interface
}

func NewHandler(
	createServiceUC usecases.CreateServiceExecutor,
	modifyServiceUC usecases.ModifyServiceExecutor,
	changeStatusUC usecases.ChangeServiceStatusExecutor,
	deleteServiceUC usecases.DeleteServiceExecutor,
	transferAccountUC usecases.TransferAccountExecutor,
	renameSubscriberUC usecases.RenameSubscriberExecutor,
	getServiceUC usecases.GetServiceExecutor,
	allocateVLANUC usecases.AllocateVLANExecutor,
	seedInventoryUC usecases.SeedInventoryExecutor,
	logger logger.Interface,
) *Handler {
	return &Handler{
		createServiceUC:    createServiceUC,
		modifyServiceUC:    modifyServiceUC,
		changeStatusUC:     changeStatusUC,
		deleteServiceUC:    deleteServiceUC,
		transferAccountUC:  transferAccountUC,
		renameSubscriberUC: renameSubscriberUC,
		getServiceUC:       getServiceUC,
		allocateVLANUC:     allocateVLANUC,
		seedInventoryUC:    seedInventoryUC,
		logger:             logger,
	}
}

// bind decodes and validates a JSON body, answering 400 itself on failure.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warnw("invalid request body", "path", c.FullPath(), "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return false
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return false
	}
	return true
}

func nameParam(c *gin.Context) (string, bool) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("name is required"))
		return "", false
	}
	return name, true
}

// CreateService handles POST /services
func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.createServiceUC.Execute(c.Request.Context(), req.ToCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, toCreateServiceResponse(result), "Service created successfully")
}

// GetService handles GET /services/:name
func (h *Handler) GetService(c *gin.Context) {
	name, ok := nameParam(c)
	if !ok {
		return
	}

	service, err := h.getServiceUC.Execute(c.Request.Context(), usecases.GetServiceQuery{SubscriptionName: name})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", service)
}

// ModifyService handles PATCH /services/:name
func (h *Handler) ModifyService(c *gin.Context) {
	name, ok := nameParam(c)
	if !ok {
		return
	}
	var req ModifyServiceRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.modifyServiceUC.Execute(c.Request.Context(), usecases.ModifyServiceCommand{
		SubscriptionName:  name,
		NewServiceID:      req.ServiceID,
		QoSProfile:        req.QoSProfile,
		Status:            req.Status,
		Properties:        req.Properties,
		ProductProperties: req.ProductProperties,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Service modified successfully", &RenameResponse{
		Subscription: result.Subscription,
		Renamed:      result.Renamed,
		Renames:      result.Renames,
	})
}

// ChangeStatus handles PUT /services/:name/status
func (h *Handler) ChangeStatus(c *gin.Context) {
	name, ok := nameParam(c)
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.changeStatusUC.Execute(c.Request.Context(), usecases.ChangeServiceStatusCommand{
		SubscriptionName: name,
		Status:           req.Status,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Service status updated", &StatusResponse{
		Subscription: result.Subscription,
		Status:       result.Status,
		Updated:      result.Updated,
	})
}

// DeleteService handles DELETE /services/:name
func (h *Handler) DeleteService(c *gin.Context) {
	name, ok := nameParam(c)
	if !ok {
		return
	}

	result, err := h.deleteServiceUC.Execute(c.Request.Context(), usecases.DeleteServiceCommand{SubscriptionName: name})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Service deleted successfully", toDeleteServiceResponse(result))
}

// TransferAccount handles POST /services/:name/transfer
func (h *Handler) TransferAccount(c *gin.Context) {
	name, ok := nameParam(c)
	if !ok {
		return
	}
	var req TransferAccountRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.transferAccountUC.Execute(c.Request.Context(), usecases.TransferAccountCommand{
		SubscriptionName: name,
		NewAccountNumber: req.AccountNumber,
		NewQualifier:     req.Qualifier,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Account transferred successfully", toTransferAccountResponse(result))
}

// RenameSubscriber handles POST /subscribers/:name/rename
func (h *Handler) RenameSubscriber(c *gin.Context) {
	name, ok := nameParam(c)
	if !ok {
		return
	}
	var req RenameSubscriberRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.renameSubscriberUC.Execute(c.Request.Context(), usecases.RenameSubscriberCommand{
		SubscriberName:   name,
		NewAccountNumber: req.AccountNumber,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscriber renamed successfully", gin.H{"subscriber": result.Subscriber})
}

// AllocateVLAN handles POST /vlans
func (h *Handler) AllocateVLAN(c *gin.Context) {
	var req AllocateVLANRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.allocateVLANUC.Execute(c.Request.Context(), usecases.AllocateVLANCommand{
		MENM:        req.MENM,
		Device:      req.Device,
		TemplateRef: req.TemplateRef,
		RangeStart:  req.RangeStart,
		RangeEnd:    req.RangeEnd,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"vlan_id": result.VLANID, "interface": result.Interface}, "VLAN allocated")
}

// SeedInventory handles POST /inventory/seed
func (h *Handler) SeedInventory(c *gin.Context) {
	var req SeedInventoryRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.seedInventoryUC.Execute(c.Request.Context(), req.ToCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Inventory seeded", gin.H{
		"created": result.Created,
		"skipped": result.Skipped,
	})
}
