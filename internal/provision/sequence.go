package provision

// InstallSequence is the fixed order of provisioning steps, mirroring
// the appliance image's layering: environment, packages, access,
// storage, database, dashboard, sources, services. Migrations run
// afterwards by the caller, once credentials are in the state.
func InstallSequence() []Entry {
	return []Entry{
		{Step: LayoutStep{}},
		{Step: ServiceUserStep{}},
		{Step: &PackagesStep{}},
		{Step: NodeREDStep{}},
		{Step: DeployKeyStep{}},
		{Step: KnownHostsStep{}, BestEffort: true},
		{Step: SudoersStep{}},
		{Step: &DiskExpandStep{}, BestEffort: true},
		{Step: MariaDBServiceStep{}},
		{Step: CredentialsStep{}},
		{Step: DatabaseBootstrapStep{}},
		{Step: SecretFileStep{}},
		{Step: SettingsInjectStep{}, BestEffort: true},
		{Step: ReposStep{}, BestEffort: true},
		{Step: ServiceUnitsStep{}},
	}
}
