package i18n

type message struct {
	ar string
	en string
}

var catalog = map[string]message{
	// generic
	"invalid_body":   {"صيغة الطلب غير صحيحة", "Invalid request body"},
	"internal_error": {"حدث خطأ غير متوقع، حاول مرة أخرى", "Something went wrong, please try again"},
	"not_found":      {"العنصر غير موجود", "Not found"},
	"unauthorized":   {"يجب تسجيل الدخول أولاً", "You need to sign in first"},
	"forbidden":      {"ليس لديك صلاحية", "You do not have permission"},
	"rate_limited":   {"طلبات كثيرة، انتظر قليلاً", "Too many requests, slow down"},
	"feature_off":    {"هذه الميزة متوقفة حالياً", "This feature is currently disabled"},

	// chat
	"chat.unknown_channel": {"القناة غير موجودة", "Channel not found"},
	"chat.empty":           {"لا يمكن إرسال رسالة فارغة", "Message cannot be empty"},
	"chat.too_long":        {"الرسالة طويلة جداً (الحد %d حرف)", "Message is too long (limit %d characters)"},
	"chat.timed_out":       {"أنت ممنوع مؤقتاً من إرسال الرسائل حتى %s", "You are temporarily blocked from sending messages until %s"},
	"chat.violation":       {"⚠️ تم إيقافك عن الكتابة لمدة 5 دقائق بسبب استخدام ألفاظ غير لائقة", "⚠️ You have been timed out for 5 minutes for using inappropriate language"},
	"chat.send_failed":     {"فشل إرسال الرسالة", "Failed to send message"},
	"chat.cleared":         {"تم حذف %d رسالة", "Deleted %d messages"},
	"chat.run_again":       {"ما زالت هناك رسائل، أعد تشغيل الحذف", "Messages remain, run the delete again"},

	// reports
	"report.invalid":   {"بيانات البلاغ غير مكتملة", "Report is missing required fields"},
	"report.duplicate": {"لقد أبلغت عن هذا المحتوى مسبقاً", "You already reported this content"},
	"report.self":      {"لا يمكنك الإبلاغ عن رسالتك", "You cannot report your own message"},
	"report.not_found": {"البلاغ غير موجود", "Report not found"},
	"report.updated":   {"تم تحديث البلاغ", "Report updated"},

	// auth
	"auth.invalid_credentials": {"البريد الإلكتروني أو كلمة المرور غير صحيحة", "Invalid email or password"},
	"auth.email_taken":         {"البريد الإلكتروني مستخدم مسبقاً", "Email is already registered"},
	"auth.weak_password":       {"كلمة المرور يجب أن تكون 8 أحرف على الأقل", "Password must be at least 8 characters"},
	"auth.invalid_email":       {"البريد الإلكتروني غير صالح", "Invalid email address"},
	"auth.invalid_refresh":     {"جلسة غير صالحة، سجل الدخول مجدداً", "Invalid session, please sign in again"},
	"auth.deleted":             {"تم حذف الحساب", "Account deleted"},
	"auth.logged_out":          {"تم تسجيل الخروج", "Logged out"},
	"auth.password_required":   {"كلمة المرور مطلوبة", "Password is required"},
	"auth.user_not_found":      {"المستخدم غير موجود", "User not found"},

	// settings
	"setting.invalid":   {"قيمة الإعداد غير صالحة", "Invalid setting value"},
	"setting.not_found": {"الإعداد غير موجود", "Setting not found"},
	"setting.deleted":   {"تم حذف الإعداد", "Setting deleted"},
	"maintenance":       {"المنصة تحت الصيانة، حاول لاحقاً", "The portal is under maintenance, try again later"},

	// otp
	"otp.missing_fields":   {"البريد الإلكتروني ومعرف المستخدم مطلوبان", "Email and user id are required"},
	"otp.missing_code":     {"رمز التحقق مطلوب", "Verification code is required"},
	"otp.sent":             {"تم إرسال رمز التحقق إلى بريدك الإلكتروني", "Verification code sent to your email"},
	"otp.send_failed":      {"فشل إرسال رمز التحقق", "Failed to send verification code"},
	"otp.not_found":        {"لم يتم العثور على رمز تحقق، اطلب رمزاً جديداً", "No verification code found, request a new one"},
	"otp.already_verified": {"البريد الإلكتروني موثق مسبقاً", "Email is already verified"},
	"otp.locked":           {"تجاوزت عدد المحاولات المسموح، اطلب رمزاً جديداً", "Too many attempts, request a new code"},
	"otp.expired":          {"انتهت صلاحية الرمز، اطلب رمزاً جديداً", "The code has expired, request a new one"},
	"otp.mismatch":         {"رمز غير صحيح، تبقى %d محاولات", "Incorrect code, %d attempts remaining"},
	"otp.email_mismatch":   {"البريد الإلكتروني لا يطابق الحساب", "Email does not match the account"},
	"otp.verified":         {"تم توثيق بريدك الإلكتروني بنجاح", "Your email has been verified"},
	"otp.email_subject":    {"رمز التحقق الخاص بك", "Your verification code"},
	"otp.email_body":       {"رمز التحقق الخاص بك هو: %s\nصالح لمدة 10 دقائق.", "Your verification code is: %s\nIt is valid for 10 minutes."},

	// ai tools
	"ai.message_required": {"الرسالة مطلوبة", "Message is required"},
	"ai.failed":           {"تعذر الحصول على رد من المساعد الذكي", "The AI assistant could not respond"},
	"ai.text_too_short":   {"النص قصير جداً للتحليل (10 أحرف على الأقل)", "Text is too short to analyse (at least 10 characters)"},
	"ai.prompt_required":  {"وصف الصورة مطلوب", "Prompt is required"},
	"ai.image_failed":     {"فشل توليد الصورة", "Image generation failed"},
	"ai.image_auth":       {"مفتاح خدمة الصور غير صالح", "Image service credentials are invalid"},

	// detector verdicts
	"detect.ai":     {"مكتوب غالباً بالذكاء الاصطناعي", "Likely AI-generated"},
	"detect.mixed":  {"محتوى مختلط", "Mixed content"},
	"detect.human":  {"مكتوب غالباً من قبل إنسان", "Likely human-written"},

	// achievements
	"achievement.unlocked": {"🏆 إنجاز جديد: %s", "🏆 Achievement unlocked: %s"},
	"achievement.unknown":  {"الإنجاز غير موجود", "Unknown achievement"},
	"achievement.amount":   {"القيمة يجب أن تكون رقماً موجباً", "Amount must be a positive number"},

	// resources
	"resource.invalid":   {"العنوان ورابط الملف مطلوبان", "Title and file URL are required"},
	"resource.not_found": {"الملف غير موجود", "Resource not found"},
}
