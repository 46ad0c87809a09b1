package services

// Service instances used by the HTTP controllers
var (
	orderServiceInstance    *OrderService
	orderQueryInstance      *OrderQueryService
	catalogServiceInstance  *CatalogService
	customerServiceInstance *CustomerService
	settingsServiceInstance *SettingsService
	auditServiceInstance    *AuditService
)

// SetOrderService sets the order service instance
func SetOrderService(s *OrderService) { orderServiceInstance = s }

// GetOrderService returns the order service instance
func GetOrderService() *OrderService { return orderServiceInstance }

// SetOrderQueryService sets the order query service instance
func SetOrderQueryService(s *OrderQueryService) { orderQueryInstance = s }

// GetOrderQueryService returns the order query service instance
func GetOrderQueryService() *OrderQueryService { return orderQueryInstance }

// SetCatalogService sets the catalog service instance
func SetCatalogService(s *CatalogService) { catalogServiceInstance = s }

// GetCatalogService returns the catalog service instance
func GetCatalogService() *CatalogService { return catalogServiceInstance }

// SetCustomerService sets the customer service instance
func SetCustomerService(s *CustomerService) { customerServiceInstance = s }

// GetCustomerService returns the customer service instance
func GetCustomerService() *CustomerService { return customerServiceInstance }

// SetSettingsService sets the settings service instance
func SetSettingsService(s *SettingsService) { settingsServiceInstance = s }

// GetSettingsService returns the settings service instance
func GetSettingsService() *SettingsService { return settingsServiceInstance }

// SetAuditService sets the audit service instance
func SetAuditService(s *AuditService) { auditServiceInstance = s }

// GetAuditService returns the audit service instance
func GetAuditService() *AuditService { return auditServiceInstance }
